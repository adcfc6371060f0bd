package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
)

type Storage interface {
	// SaveBudget replaces any budget stored for b.UserID.
	SaveBudget(ctx context.Context, b Budget) error
	// GetBudget fails with NOT FOUND when the user never saved a budget.
	GetBudget(ctx context.Context, userId string) (Budget, error)
}

type BudgetStore struct {
	storage Storage
}

func NewBudgetStore(s Storage) *BudgetStore {
	return &BudgetStore{storage: s}
}

// ParseBudget parses a whole number budget such as "5000".
func ParseBudget(amount string) (int64, error) {
	value, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidAmount,
			Message: fmt.Sprintf("Invalid budget value: '%s', budget must be a whole number.", amount),
		}
	}
	return value, nil
}

// SetBudget stores the parsed amount, not the raw text.
func (bs *BudgetStore) SetBudget(ctx context.Context, userId string, amount string) error {
	if userId == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: "User id cannot be empty.",
		}
	}

	value, err := ParseBudget(amount)
	if err != nil {
		return err
	}

	b := Budget{
		UserID:    userId,
		Amount:    value,
		UpdatedAt: time.Now().UTC(),
	}
	if err := bs.storage.SaveBudget(ctx, b); err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// GetBudget returns ok == false when no budget was ever set.
func (bs *BudgetStore) GetBudget(ctx context.Context, userId string) (Budget, bool, error) {
	b, err := bs.storage.GetBudget(ctx, userId)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return Budget{}, false, nil
		}
		return Budget{}, false, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, true, nil
}
