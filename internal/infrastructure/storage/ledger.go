package storage

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/ledger"
)

// Ledger is the gorm-backed inventory ledger. Decrements are single-statement
// conditional updates (quantity = quantity - n WHERE quantity >= n), the
// storage-level equivalent of a row lock plus check: the WHERE guard closes
// the lost-update window and sqlite serializes writers.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) TryReserve(ctx context.Context, productID uint, quantity int64) error {
	return tryReserve(l.db.WithContext(ctx), productID, quantity)
}

func (l *Ledger) Release(ctx context.Context, productID uint, quantity int64) error {
	return release(l.db.WithContext(ctx), productID, quantity)
}

// TryReserveAll applies every reservation inside one transaction; any
// shortfall rolls the whole scope back, leaving no partial decrements.
func (l *Ledger) TryReserveAll(ctx context.Context, items []ledger.Item) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			if err := tryReserve(tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (l *Ledger) ReleaseAll(ctx context.Context, items []ledger.Item) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			if err := release(tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func tryReserve(tx *gorm.DB, productID uint, quantity int64) error {
	res := tx.Model(&catalog.Product{}).
		Where("id = ? AND quantity >= ?", productID, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// No row matched: distinguish a missing product from a shortfall.
	var count int64
	if err := tx.Model(&catalog.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ledger.ErrNotFound
	}
	return ledger.ErrInsufficientStock
}

func release(tx *gorm.DB, productID uint, quantity int64) error {
	res := tx.Model(&catalog.Product{}).
		Where("id = ?", productID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}
