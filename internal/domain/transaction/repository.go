package transaction

import "context"

type Repository interface {
	// Create inserts a new transaction row. A concurrent pending transaction
	// for the same form surfaces as ErrDuplicatePending.
	Create(ctx context.Context, t *Transaction) error
	// FindPendingByForm returns the single pending transaction for a form.
	FindPendingByForm(ctx context.Context, formID uint) (*Transaction, error)
	// FindByPaymentID looks a transaction up by its external gateway reference,
	// preloading the owning form and its line items.
	FindByPaymentID(ctx context.Context, paymentID string) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) error
}
