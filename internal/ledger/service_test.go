package ledger

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/internal/budget"
	"github.com/fatali-fataliyev/budget_planner/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Mocks
type MockStorage struct {
	records map[string][]Record
	down    bool
}

var errUnreachable = appErrors.ErrorResponse{Code: appErrors.ErrCodeStorageUnavailable, Message: "Storage is unreachable."}

func (m *MockStorage) SaveTransaction(ctx context.Context, userId string, r Record) error {
	if m.down {
		return errUnreachable
	}
	if m.records == nil {
		m.records = map[string][]Record{}
	}
	m.records[userId] = append(m.records[userId], r)
	return nil
}

func (m *MockStorage) GetTransactions(ctx context.Context, userId string) ([]Record, error) {
	if m.down {
		return nil, errUnreachable
	}
	out := make([]Record, len(m.records[userId]))
	copy(out, m.records[userId])
	return out, nil
}

func (m *MockStorage) UpdateTransactionImage(ctx context.Context, userId string, transactionId string, url string) error {
	if m.down {
		return errUnreachable
	}
	for i, r := range m.records[userId] {
		if r.ID == transactionId {
			u := url
			m.records[userId][i].Image = &u
			return nil
		}
	}
	return appErrors.ErrorResponse{Code: appErrors.ErrCodeNotFound, Message: "Transaction not found."}
}

func (m *MockStorage) DeleteTransaction(ctx context.Context, userId string, transactionId string) error {
	if m.down {
		return errUnreachable
	}
	for i, r := range m.records[userId] {
		if r.ID == transactionId {
			m.records[userId] = append(m.records[userId][:i], m.records[userId][i+1:]...)
			return nil
		}
	}
	return appErrors.ErrorResponse{Code: appErrors.ErrCodeNotFound, Message: "Transaction not found."}
}

type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	fail   bool
}

func (p *RecordingPublisher) Publish(ctx context.Context, e events.Event) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

type StaticBudgets struct {
	amount int64
	set    bool
	err    error
}

func (s StaticBudgets) GetBudget(ctx context.Context, userId string) (budget.Budget, bool, error) {
	if s.err != nil {
		return budget.Budget{}, false, s.err
	}
	return budget.Budget{UserID: userId, Amount: s.amount}, s.set, nil
}

func strPtr(s string) *string { return &s }

// Tests

func TestTotalSpend(t *testing.T) {
	tests := []struct {
		name    string
		amounts []string
		want    int64
	}{
		{name: "empty", amounts: nil, want: 0},
		{name: "truncates toward zero", amounts: []string{"10.7", "-3.2"}, want: 7},
		{name: "negative only", amounts: []string{"-0.9", "-1.9"}, want: -1},
		{name: "whole numbers", amounts: []string{"100", "250", "0"}, want: 350},
		{name: "fractions never accumulate", amounts: []string{"0.5", "0.5", "0.5"}, want: 0},
		{name: "huge stored amount saturates", amounts: []string{"1e19"}, want: math.MaxInt64},
		{name: "huge negative stored amount saturates", amounts: []string{"-1e100"}, want: math.MinInt64},
		{name: "sum saturates", amounts: []string{"9223372036854775807", "1"}, want: math.MaxInt64},
		{name: "negative sum saturates", amounts: []string{"-9223372036854775808", "-1"}, want: math.MinInt64},
		{name: "saturated amount still offsets", amounts: []string{"1e19", "-5"}, want: math.MaxInt64 - 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []Transaction
			for _, a := range tt.amounts {
				txs = append(txs, Transaction{Amount: decimal.RequireFromString(a)})
			}
			require.Equal(t, tt.want, TotalSpend(txs))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "12.50", want: "12.5"},
		{input: " -3 ", want: "-3"},
		{input: "0", want: "0"},
		{input: "", wantErr: true},
		{input: "   ", wantErr: true},
		{input: "ten", wantErr: true},
		{input: "1,5", wantErr: true},
		{input: "9223372036854775807", want: "9223372036854775807"},
		{input: "-9223372036854775808.99", want: "-9223372036854775808.99"},
		{input: "1.5e3", want: "1500"},
		{input: "0e100", want: "0"},
		{input: "9223372036854775808", wantErr: true},
		{input: "1e19", wantErr: true},
		{input: "-1e19", wantErr: true},
		{input: "1e100", wantErr: true},
		{input: "1e5000000", wantErr: true},
		{input: "1e-70", wantErr: true},
		{input: "0." + strings.Repeat("1", MAX_AMOUNT_LENGTH), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.True(t, errors.Is(err, appErrors.ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestListSaturatesStoredHugeAmount(t *testing.T) {
	store := &MockStorage{records: map[string][]Record{
		"u1": {
			{ID: "a", Name: strPtr("written elsewhere"), Amount: strPtr("1e19")},
			{ID: "b", Name: strPtr("coffee"), Amount: strPtr("3")},
		},
	}}
	l := NewLedger(store, nil)

	txs, err := l.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64), TotalSpend(txs))

	s, err := l.Summary(context.Background(), "u1", StaticBudgets{amount: -10, set: true})
	require.NoError(t, err)
	require.Equal(t, int64(math.MinInt64), s.Remaining)
}

func TestAppendAndList(t *testing.T) {
	pub := &RecordingPublisher{}
	l := NewLedger(&MockStorage{}, pub)
	ctx := context.Background()

	ids := map[string]bool{}
	for i, name := range []string{"coffee", "rent", ""} {
		id, err := l.Append(ctx, "u1", name, decimal.NewFromInt(int64(i+1)))
		require.NoError(t, err)
		require.NotEmpty(t, id)
		require.False(t, ids[id], "identifier assigned twice")
		ids[id] = true
	}

	txs, err := l.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.Equal(t, "coffee", txs[0].Name)
	require.Equal(t, "rent", txs[1].Name)
	require.Equal(t, UNKNOWN_TRANSACTION_NAME, txs[2].Name)
	for _, tx := range txs {
		require.True(t, ids[tx.ID])
		require.Equal(t, "", tx.Image)
	}

	require.Len(t, pub.events, 3)
	require.Equal(t, events.TransactionAppended, pub.events[0].Type)

	other, err := l.List(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestAppendTwiceCreatesTwoRecords(t *testing.T) {
	l := NewLedger(&MockStorage{}, nil)
	ctx := context.Background()

	first, err := l.Append(ctx, "u1", "coffee", decimal.NewFromInt(3))
	require.NoError(t, err)
	second, err := l.Append(ctx, "u1", "coffee", decimal.NewFromInt(3))
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	txs, err := l.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
}

func TestAppendValidation(t *testing.T) {
	l := NewLedger(&MockStorage{}, nil)
	ctx := context.Background()

	_, err := l.Append(ctx, "", "coffee", decimal.NewFromInt(1))
	require.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	_, err = l.Append(ctx, "u1", strings.Repeat("a", MAX_TRANSACTION_NAME+1), decimal.NewFromInt(1))
	require.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}

func TestListRepairsRecords(t *testing.T) {
	store := &MockStorage{records: map[string][]Record{
		"u1": {
			{ID: "a", Name: nil, Amount: strPtr("12.5"), Image: strPtr("http://img/a")},
			{ID: "b", Name: strPtr(""), Amount: strPtr("not-a-number"), Image: nil},
			{ID: "c", Name: strPtr("lunch"), Amount: nil, Image: strPtr("")},
		},
	}}
	l := NewLedger(store, nil)

	txs, err := l.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, txs, 3)

	require.Equal(t, UNKNOWN_TRANSACTION_NAME, txs[0].Name)
	require.Equal(t, "12.5", txs[0].Amount.String())
	require.Equal(t, "http://img/a", txs[0].Image)

	require.Equal(t, UNKNOWN_TRANSACTION_NAME, txs[1].Name)
	require.True(t, txs[1].Amount.IsZero())
	require.Equal(t, "", txs[1].Image)

	require.Equal(t, "lunch", txs[2].Name)
	require.True(t, txs[2].Amount.IsZero())
}

func TestRemove(t *testing.T) {
	pub := &RecordingPublisher{}
	l := NewLedger(&MockStorage{}, pub)
	ctx := context.Background()

	keep, err := l.Append(ctx, "u1", "keep", decimal.NewFromInt(1))
	require.NoError(t, err)
	drop, err := l.Append(ctx, "u1", "drop", decimal.NewFromInt(2))
	require.NoError(t, err)

	require.NoError(t, l.Remove(ctx, "u1", drop))

	txs, err := l.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, keep, txs[0].ID)

	err = l.Remove(ctx, "u1", drop)
	require.True(t, errors.Is(err, appErrors.ErrNotFound))

	// another user's identifier is never reachable
	err = l.Remove(ctx, "u2", keep)
	require.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.Equal(t, events.TransactionRemoved, pub.events[len(pub.events)-1].Type)
}

func TestSetImage(t *testing.T) {
	l := NewLedger(&MockStorage{}, nil)
	ctx := context.Background()

	first, err := l.Append(ctx, "u1", "first", decimal.NewFromInt(1))
	require.NoError(t, err)
	second, err := l.Append(ctx, "u1", "second", decimal.NewFromInt(2))
	require.NoError(t, err)

	tests := []struct {
		name   string
		txId   string
		url    string
		errIs  error
		images map[string]string
	}{
		{name: "Fail - empty url", txId: first, url: "", errIs: appErrors.ErrInvalidInput, images: map[string]string{first: "", second: ""}},
		{name: "Fail - unknown transaction", txId: "missing", url: "http://img/x", errIs: appErrors.ErrNotFound, images: map[string]string{first: "", second: ""}},
		{name: "Fail - url too long", txId: first, url: "http://" + strings.Repeat("x", MAX_IMAGE_URL_LENGTH), errIs: appErrors.ErrInvalidInput, images: map[string]string{first: "", second: ""}},
		{name: "Success", txId: second, url: "http://img/receipt.png", images: map[string]string{first: "", second: "http://img/receipt.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.SetImage(ctx, "u1", tt.txId, tt.url)
			if tt.errIs != nil {
				require.True(t, errors.Is(err, tt.errIs), "got %v", err)
			} else {
				require.NoError(t, err)
			}

			txs, err := l.List(ctx, "u1")
			require.NoError(t, err)
			for _, tx := range txs {
				require.Equal(t, tt.images[tx.ID], tx.Image)
			}
		})
	}
}

func TestStorageUnavailable(t *testing.T) {
	l := NewLedger(&MockStorage{down: true}, nil)
	ctx := context.Background()

	_, err := l.Append(ctx, "u1", "x", decimal.NewFromInt(1))
	require.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))

	_, err = l.List(ctx, "u1")
	require.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))

	err = l.SetImage(ctx, "u1", "id", "http://img")
	require.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))

	err = l.Remove(ctx, "u1", "id")
	require.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	l := NewLedger(&MockStorage{}, &RecordingPublisher{fail: true})
	ctx := context.Background()

	id, err := l.Append(ctx, "u1", "coffee", decimal.NewFromInt(2))
	require.NoError(t, err)
	require.NoError(t, l.SetImage(ctx, "u1", id, "http://img"))
	require.NoError(t, l.Remove(ctx, "u1", id))
}

func TestSummary(t *testing.T) {
	l := NewLedger(&MockStorage{}, nil)
	ctx := context.Background()

	_, err := l.Append(ctx, "u1", "a", decimal.RequireFromString("10.7"))
	require.NoError(t, err)
	_, err = l.Append(ctx, "u1", "b", decimal.RequireFromString("-3.2"))
	require.NoError(t, err)

	s, err := l.Summary(ctx, "u1", StaticBudgets{amount: 5000, set: true})
	require.NoError(t, err)
	require.Equal(t, Summary{HasBudget: true, Budget: 5000, TotalSpend: 7, Remaining: 4993, Count: 2}, s)

	s, err = l.Summary(ctx, "u1", StaticBudgets{amount: math.MinInt64, set: true})
	require.NoError(t, err)
	require.Equal(t, int64(math.MinInt64), s.Remaining)

	s, err = l.Summary(ctx, "u1", StaticBudgets{})
	require.NoError(t, err)
	require.False(t, s.HasBudget)
	require.Equal(t, int64(7), s.TotalSpend)
	require.Equal(t, int64(0), s.Remaining)

	_, err = l.Summary(ctx, "u1", StaticBudgets{err: errUnreachable})
	require.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))
}
