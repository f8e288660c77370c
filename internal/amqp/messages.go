package amqp

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
)

// ExpenseChangedMessage is the wire form of domain.ExpenseChanged. Consumers
// fetch the expense itself through the API when they need its fields.
type ExpenseChangedMessage struct {
	Kind       string    `json:"kind"`
	ExpenseID  string    `json:"expenseID"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewExpenseChangedMessage converts a hub event into a message.
func NewExpenseChangedMessage(ev domain.ExpenseChanged) *ExpenseChangedMessage {
	return &ExpenseChangedMessage{
		Kind:       string(ev.Kind),
		ExpenseID:  ev.ExpenseID,
		OccurredAt: ev.OccurredAt.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseChangedMessageFromJSON creates a message from JSON bytes
func ExpenseChangedMessageFromJSON(data []byte) (*ExpenseChangedMessage, error) {
	var msg ExpenseChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
