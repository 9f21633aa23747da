package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain/transaction"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts the row. When two writers race on the same form, the partial
// unique index on (form_id) WHERE status='pending' fails the loser, surfaced
// as ErrDuplicatePending so the caller can fall back to a lookup.
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return transaction.ErrDuplicatePending
		}
		return err
	}
	return nil
}

func (r *TransactionRepository) FindPendingByForm(ctx context.Context, formID uint) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := r.db.WithContext(ctx).
		Where("form_id = ? AND status = ?", formID, transaction.StatusPending).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transaction.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) FindByPaymentID(ctx context.Context, paymentID string) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := r.db.WithContext(ctx).
		Preload("Form").
		Preload("Form.LineItems").
		Where("payment_id = ?", paymentID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transaction.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error
}
