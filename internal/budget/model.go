package budget

import (
	"strconv"
	"time"
)

// Budget is the single monthly budget of a user, overwritten on every save.
type Budget struct {
	UserID    string
	Amount    int64
	UpdatedAt time.Time
}

func (b Budget) String() string {
	return strconv.FormatInt(b.Amount, 10)
}
