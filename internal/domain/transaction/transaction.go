package transaction

import (
	"errors"
	"time"

	"storefront/internal/domain/form"
)

var (
	ErrNotFound          = errors.New("transaction: not found")
	ErrDuplicatePending  = errors.New("transaction: pending transaction already exists for form")
	ErrInvalidTransition = errors.New("transaction: invalid status transition")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Transaction tracks one payment attempt against one order form. Rows are
// never deleted, only transitioned, so the table doubles as an audit trail.
type Transaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// At most one pending transaction may exist per form; the partial unique
	// index makes the losing concurrent writer fail its insert.
	FormID uint           `gorm:"not null;index;uniqueIndex:ux_transactions_pending_form,where:status = 'pending'" json:"form_id"`
	Form   form.OrderForm `gorm:"foreignKey:FormID" json:"-"`

	// External gateway reference and customer-facing redirect.
	PaymentID  string `gorm:"size:64;index;not null" json:"payment_id"`
	PaymentURL string `gorm:"size:255" json:"payment_url"`

	// Locally generated idempotency secret sent with the charge creation.
	SecretKey string `gorm:"size:64;uniqueIndex;not null" json:"-"`

	Status Status `gorm:"size:16;not null;default:pending" json:"status"`

	// StockReduced records whether Reduce has been applied, so Revert stays
	// a no-op on stock that was never reserved.
	StockReduced bool `gorm:"not null;default:false" json:"stock_reduced"`
	Reverted     bool `gorm:"not null;default:false" json:"reverted"`
}

func (Transaction) TableName() string { return "transactions" }

// MarkPaid transitions pending -> paid. Already-paid is an idempotent no-op.
func (t *Transaction) MarkPaid() error {
	switch t.Status {
	case StatusPaid:
		return nil
	case StatusPending:
		t.Status = StatusPaid
		return nil
	default:
		return ErrInvalidTransition
	}
}

// MarkFailed transitions pending -> failed. Already-failed is a no-op.
func (t *Transaction) MarkFailed() error {
	switch t.Status {
	case StatusFailed:
		return nil
	case StatusPending:
		t.Status = StatusFailed
		return nil
	default:
		return ErrInvalidTransition
	}
}

// MarkRefunded transitions paid -> refunded via an explicit revert.
func (t *Transaction) MarkRefunded() error {
	switch t.Status {
	case StatusRefunded:
		return nil
	case StatusPaid:
		t.Status = StatusRefunded
		return nil
	default:
		return ErrInvalidTransition
	}
}
