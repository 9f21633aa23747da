package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain/form"
)

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

// Create persists the form together with its line items in one transaction.
func (r *FormRepository) Create(ctx context.Context, f *form.OrderForm) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FormRepository) FindByID(ctx context.Context, id uint) (*form.OrderForm, error) {
	var f form.OrderForm
	err := r.db.WithContext(ctx).Preload("LineItems").First(&f, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, form.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FormRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Select(clause.Associations).
		Delete(&form.OrderForm{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return form.ErrNotFound
	}
	return nil
}
