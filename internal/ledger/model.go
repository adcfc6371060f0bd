package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a ledger entry as shown to callers, every field repaired to a usable value.
type Transaction struct {
	ID     string
	Name   string
	Amount decimal.Decimal
	Image  string
}

// Record is a transaction as kept by the document store. Fields are raw text and
// may be missing (nil) when another client wrote the record.
type Record struct {
	ID        string
	Name      *string
	Amount    *string
	Image     *string
	CreatedAt time.Time
}

// Summary holds the figures of the home screen.
type Summary struct {
	HasBudget  bool
	Budget     int64
	TotalSpend int64
	Remaining  int64
	Count      int
}
