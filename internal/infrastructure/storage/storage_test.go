package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/form"
)

// newTestDB opens a throwaway sqlite file. A single connection keeps
// concurrent test writers from tripping over sqlite's file lock.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, quantity int64) *catalog.Product {
	t.Helper()

	p := &catalog.Product{
		Title:         "Winter Jacket",
		PriceAmount:   599900,
		PriceCurrency: "RUB",
		Quantity:      quantity,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedForm(t *testing.T, db *gorm.DB, items ...form.LineItem) *form.OrderForm {
	t.Helper()

	f := &form.OrderForm{
		Contact: form.Contact{
			Name:        "Ivan Petrov",
			Email:       "ivan@example.com",
			PhoneNumber: "+79001234567",
			City:        "Moscow",
			Street:      "Tverskaya",
			House:       "1",
		},
		LineItems: items,
	}
	require.NoError(t, db.Create(f).Error)
	return f
}

func productQuantity(t *testing.T, db *gorm.DB, id uint) int64 {
	t.Helper()

	var p catalog.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Quantity
}
