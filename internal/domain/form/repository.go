package form

import "context"

type Repository interface {
	// Create persists the form and its line items as one unit.
	Create(ctx context.Context, f *OrderForm) error
	// FindByID loads the form with its line items.
	FindByID(ctx context.Context, id uint) (*OrderForm, error)
	// Delete removes the form; line items cascade.
	Delete(ctx context.Context, id uint) error
}
