package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/form"
	"storefront/internal/domain/transaction"
)

// Open connects to the sqlite database. TranslateError turns driver unique
// constraint violations into gorm.ErrDuplicatedKey, which the transaction
// repository relies on for pending-row races.
func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
}

// AutoMigrate creates the schema, including the partial unique index that
// enforces at most one pending transaction per form.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Product{},
		&form.OrderForm{},
		&form.LineItem{},
		&transaction.Transaction{},
	)
}
