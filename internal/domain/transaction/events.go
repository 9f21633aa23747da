package transaction

import "time"

// StatusChangedEvent is emitted after a reconciliation outcome is persisted.
type StatusChangedEvent struct {
	TransactionID uint
	FormID        uint
	PaymentID     string
	Status        Status
	OccurredAt    time.Time
}

func (e StatusChangedEvent) EventName() string { return "transaction." + string(e.Status) }

func NewStatusChangedEvent(t *Transaction) StatusChangedEvent {
	return StatusChangedEvent{
		TransactionID: t.ID,
		FormID:        t.FormID,
		PaymentID:     t.PaymentID,
		Status:        t.Status,
		OccurredAt:    time.Now().UTC(),
	}
}
