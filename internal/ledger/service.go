package ledger

import (
	"context"
	"fmt"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/internal/budget"
	"github.com/fatali-fataliyev/budget_planner/internal/contextutil"
	"github.com/fatali-fataliyev/budget_planner/internal/events"
	"github.com/fatali-fataliyev/budget_planner/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Storage interface {
	SaveTransaction(ctx context.Context, userId string, r Record) error
	// GetTransactions returns the user's records in insertion order.
	GetTransactions(ctx context.Context, userId string) ([]Record, error)
	// UpdateTransactionImage fails with NOT FOUND when the record does not exist.
	UpdateTransactionImage(ctx context.Context, userId string, transactionId string, url string) error
	// DeleteTransaction fails with NOT FOUND when the record does not exist.
	DeleteTransaction(ctx context.Context, userId string, transactionId string) error
}

type BudgetReader interface {
	GetBudget(ctx context.Context, userId string) (budget.Budget, bool, error)
}

// Ledger is the per-user transaction store. Failures are reported, never retried.
type Ledger struct {
	storage   Storage
	publisher events.Publisher
}

func NewLedger(s Storage, p events.Publisher) *Ledger {
	if p == nil {
		p = events.NopPublisher{}
	}
	return &Ledger{
		storage:   s,
		publisher: p,
	}
}

func (l *Ledger) Append(ctx context.Context, userId string, name string, amount decimal.Decimal) (string, error) {
	if err := requireUser(userId); err != nil {
		return "", err
	}
	if len(name) > MAX_TRANSACTION_NAME {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: fmt.Sprintf("Transaction name so long, maximum length is %d", MAX_TRANSACTION_NAME),
		}
	}

	amountText := amount.String()
	image := ""
	record := Record{
		ID:        uuid.New().String(),
		Name:      &name,
		Amount:    &amountText,
		Image:     &image,
		CreatedAt: time.Now().UTC(),
	}

	if err := l.storage.SaveTransaction(ctx, userId, record); err != nil {
		return "", fmt.Errorf("failed to add transaction: %w", err)
	}

	l.publish(ctx, events.NewEvent(events.TransactionAppended, userId, record.ID))
	return record.ID, nil
}

func (l *Ledger) List(ctx context.Context, userId string) ([]Transaction, error) {
	if err := requireUser(userId); err != nil {
		return nil, err
	}

	records, err := l.storage.GetTransactions(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	transactions := make([]Transaction, 0, len(records))
	for _, r := range records {
		transactions = append(transactions, repair(r))
	}
	return transactions, nil
}

// SetImage attaches a receipt URL, the only field that may change after creation.
func (l *Ledger) SetImage(ctx context.Context, userId string, transactionId string, url string) error {
	if err := requireUser(userId); err != nil {
		return err
	}
	if url == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: "Please enter a valid image URL.",
		}
	}
	if len(url) > MAX_IMAGE_URL_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: fmt.Sprintf("Image URL so long, maximum length is %d", MAX_IMAGE_URL_LENGTH),
		}
	}

	if err := l.storage.UpdateTransactionImage(ctx, userId, transactionId, url); err != nil {
		return fmt.Errorf("failed to upload receipt URL: %w", err)
	}

	l.publish(ctx, events.NewEvent(events.TransactionImageSet, userId, transactionId))
	return nil
}

func (l *Ledger) Remove(ctx context.Context, userId string, transactionId string) error {
	if err := requireUser(userId); err != nil {
		return err
	}

	if err := l.storage.DeleteTransaction(ctx, userId, transactionId); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	l.publish(ctx, events.NewEvent(events.TransactionRemoved, userId, transactionId))
	return nil
}

func (l *Ledger) Summary(ctx context.Context, userId string, budgets BudgetReader) (Summary, error) {
	transactions, err := l.List(ctx, userId)
	if err != nil {
		return Summary{}, err
	}

	b, ok, err := budgets.GetBudget(ctx, userId)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		HasBudget:  ok,
		TotalSpend: TotalSpend(transactions),
		Count:      len(transactions),
	}
	if ok {
		s.Budget = b.Amount
		s.Remaining = subSaturating(b.Amount, s.TotalSpend)
	}
	return s, nil
}

// publish never fails the caller, the change is already stored.
func (l *Ledger) publish(ctx context.Context, e events.Event) {
	if err := l.publisher.Publish(ctx, e); err != nil {
		traceID := contextutil.TraceIDFromContext(ctx)
		logging.Logger.Warnf("[TraceID=%s] | failed to publish %s event for transaction %s: %v", traceID, e.Type, e.TransactionID, err)
	}
}

func requireUser(userId string) error {
	if userId == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: "User id cannot be empty.",
		}
	}
	return nil
}
