package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event types double as routing keys on the topic exchange.
const (
	EventTransactionCreated   = "transaction.created"
	EventTransactionDeleted   = "transaction.deleted"
	EventPaymentMethodDeleted = "payment_method.deleted"
)

// LedgerEvent describes a write that changed money state. Consumers fetch
// the full document from the store if they need more than this.
type LedgerEvent struct {
	Type            string    `json:"type"`
	Subject         string    `json:"subject"`
	ID              string    `json:"id"`
	PaymentMethodID string    `json:"paymentMethodId,omitempty"`
	Amount          float64   `json:"amount"`
	Kind            string    `json:"kind,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps an event with the current time.
func NewLedgerEvent(eventType, subject, id string) *LedgerEvent {
	return &LedgerEvent{
		Type:      eventType,
		Subject:   subject,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
