package events

import (
	"encoding/json"
	"time"
)

const (
	TransactionAppended = "transaction.appended"
	TransactionImageSet = "transaction.image_set"
	TransactionRemoved  = "transaction.removed"
)

// Event tells listeners that a user's ledger changed. It carries ids only,
// listeners re-list the ledger to see the new state.
type Event struct {
	Type          string    `json:"type"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewEvent(eventType string, userID string, transactionID string) Event {
	return Event{
		Type:          eventType,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
