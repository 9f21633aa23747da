package ledger

import (
	"context"
	"errors"
)

var (
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	ErrNotFound          = errors.New("ledger: product not found")
)

// Item is one reservation unit: a product and the quantity to move.
type Item struct {
	ProductID uint
	Quantity  int64
}

// Ledger owns all mutation of product quantities. Conditional decrements and
// increments run inside storage transaction scopes so concurrent reservations
// against the same product serialize without lost updates.
type Ledger interface {
	// TryReserve atomically checks available >= quantity and decrements.
	// Returns ErrInsufficientStock without mutation when stock is short.
	TryReserve(ctx context.Context, productID uint, quantity int64) error
	// Release increments available quantity. Restock always succeeds; there
	// is no upper bound, mirroring the original quantity.
	Release(ctx context.Context, productID uint, quantity int64) error
	// TryReserveAll reserves every item in one atomic unit; any shortfall
	// rolls back all prior decrements in the call.
	TryReserveAll(ctx context.Context, items []Item) error
	// ReleaseAll releases every item in one atomic unit.
	ReleaseAll(ctx context.Context, items []Item) error
}
