package ledger

import (
	"fmt"
	"math"
	"strings"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/shopspring/decimal"
)

const (
	UNKNOWN_TRANSACTION_NAME = "Unknown"
	MAX_TRANSACTION_NAME     = 255
	MAX_IMAGE_URL_LENGTH     = 2048
	MAX_AMOUNT_LENGTH        = 64
)

var (
	minWholeAmount = decimal.NewFromInt(math.MinInt64)
	maxWholeAmount = decimal.NewFromInt(math.MaxInt64)
)

// ParseAmount reads a decimal amount typed by the user, e.g. "12.50" or "-3".
// Zero and negative amounts are accepted. The whole part must fit in an int64
// and the stored text may not exceed MAX_AMOUNT_LENGTH characters.
func ParseAmount(text string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return decimal.Zero, appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidAmount,
			Message: "Amount cannot be empty.",
		}
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidAmount,
			Message: fmt.Sprintf("Invalid amount: '%s'", text),
		}
	}
	if amount.IsZero() {
		return decimal.Zero, nil
	}

	// exponents are checked first so "1e5000000" is never expanded
	tooLarge := amount.Exponent() > 18 || amount.Exponent() < -MAX_AMOUNT_LENGTH
	if !tooLarge {
		whole := amount.Truncate(0)
		tooLarge = whole.GreaterThan(maxWholeAmount) || whole.LessThan(minWholeAmount) ||
			len(amount.String()) > MAX_AMOUNT_LENGTH
	}
	if tooLarge {
		return decimal.Zero, appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidAmount,
			Message: fmt.Sprintf("Amount '%s' is out of range.", trimmed),
		}
	}
	return amount, nil
}

// repair turns a stored record into a Transaction, replacing missing or
// malformed fields with defaults instead of failing the listing.
func repair(r Record) Transaction {
	name := UNKNOWN_TRANSACTION_NAME
	if r.Name != nil && *r.Name != "" {
		name = *r.Name
	}

	amount := decimal.Zero
	if r.Amount != nil {
		if parsed, err := decimal.NewFromString(strings.TrimSpace(*r.Amount)); err == nil {
			amount = parsed
		}
	}

	image := ""
	if r.Image != nil {
		image = *r.Image
	}

	return Transaction{
		ID:     r.ID,
		Name:   name,
		Amount: amount,
		Image:  image,
	}
}
