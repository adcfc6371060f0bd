package storage

import (
	"context"
	"sync"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/internal/auth"
	"github.com/fatali-fataliyev/budget_planner/internal/budget"
	"github.com/fatali-fataliyev/budget_planner/internal/ledger"
)

type InMemoryStorage struct {
	mu           sync.RWMutex
	users        []auth.User
	budgets      map[string]budget.Budget
	transactions map[string][]ledger.Record
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		budgets:      map[string]budget.Budget{},
		transactions: map[string][]ledger.Record{},
	}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return "inmemory"
}

func (inMem *InMemoryStorage) Close() error {
	return nil
}

func (inMem *InMemoryStorage) SaveUser(ctx context.Context, user auth.User) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, u := range inMem.users {
		if u.UserName == user.UserName {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrCodeConflict,
				Message: "This username already taken.",
			}
		}
	}
	inMem.users = append(inMem.users, user)
	return nil
}

func (inMem *InMemoryStorage) FindUserByUserName(ctx context.Context, username string) (auth.User, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	for _, user := range inMem.users {
		if user.UserName == username {
			return user, nil
		}
	}
	return auth.User{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrCodeNotFound,
		Message: "User not found.",
	}
}

func (inMem *InMemoryStorage) IsUserExists(ctx context.Context, username string) (bool, error) {
	_, err := inMem.FindUserByUserName(ctx, username)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (inMem *InMemoryStorage) SaveBudget(ctx context.Context, b budget.Budget) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.budgets[b.UserID] = b
	return nil
}

func (inMem *InMemoryStorage) GetBudget(ctx context.Context, userId string) (budget.Budget, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	b, ok := inMem.budgets[userId]
	if !ok {
		return budget.Budget{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeNotFound,
			Message: "Budget not set.",
		}
	}
	return b, nil
}

func (inMem *InMemoryStorage) SaveTransaction(ctx context.Context, userId string, r ledger.Record) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.transactions[userId] = append(inMem.transactions[userId], copyRecord(r))
	return nil
}

func (inMem *InMemoryStorage) GetTransactions(ctx context.Context, userId string) ([]ledger.Record, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	records := inMem.transactions[userId]
	result := make([]ledger.Record, 0, len(records))
	for _, r := range records {
		result = append(result, copyRecord(r))
	}
	return result, nil
}

func (inMem *InMemoryStorage) UpdateTransactionImage(ctx context.Context, userId string, transactionId string, url string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	records := inMem.transactions[userId]
	for i := range records {
		if records[i].ID == transactionId {
			image := url
			records[i].Image = &image
			return nil
		}
	}
	return transactionNotFound()
}

func (inMem *InMemoryStorage) DeleteTransaction(ctx context.Context, userId string, transactionId string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	records := inMem.transactions[userId]
	for i := range records {
		if records[i].ID == transactionId {
			inMem.transactions[userId] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return transactionNotFound()
}

// copyRecord detaches the optional fields so callers never share pointers with the store.
func copyRecord(r ledger.Record) ledger.Record {
	out := r
	if r.Name != nil {
		v := *r.Name
		out.Name = &v
	}
	if r.Amount != nil {
		v := *r.Amount
		out.Amount = &v
	}
	if r.Image != nil {
		v := *r.Image
		out.Image = &v
	}
	return out
}

func transactionNotFound() error {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrCodeNotFound,
		Message: "Transaction not found.",
	}
}
