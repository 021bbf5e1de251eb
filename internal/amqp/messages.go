package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var ErrMalformedEvent = errors.New("malformed transaction event")

// TransactionEvent announces a stored transaction. It carries enough for
// consumers such as the budget alerter to act without reading the store.
type TransactionEvent struct {
	ID         string               `json:"id"`
	Type       core.TransactionType `json:"type"`
	AccountID  string               `json:"accountId"`
	CategoryID string               `json:"categoryId,omitempty"`
	Amount     decimal.Decimal      `json:"amount"`
	Date       time.Time            `json:"date"`
	Recurring  bool                 `json:"recurring"`
	Timestamp  time.Time            `json:"timestamp"`
}

// NewTransactionEvent builds the event for a freshly stored transaction.
func NewTransactionEvent(t core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		ID:         t.ID,
		Type:       t.Type,
		AccountID:  t.AccountID,
		CategoryID: t.CategoryID,
		Amount:     t.Amount,
		Date:       t.Date,
		Recurring:  t.IsRecurringGenerated,
		Timestamp:  time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event, rejecting payloads without an id or a known type.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if e.ID == "" || !e.Type.Valid() {
		return nil, fmt.Errorf("%w: missing id or type", ErrMalformedEvent)
	}
	return &e, nil
}
