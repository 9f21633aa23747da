package catalog

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("catalog: product not found")
	ErrInvalidPrice = errors.New("catalog: price must be greater than zero")
)

// Product is a catalog entry. Quantity is the available stock and is only
// ever mutated through the inventory ledger's conditional operations.
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Brand       string `gorm:"size:255" json:"brand,omitempty"`
	Description string `json:"description"`

	// Unit price in minor units (kopecks/cents).
	PriceAmount   int64  `gorm:"not null" json:"price_amount"`
	PriceCurrency string `gorm:"size:8;not null;default:RUB" json:"price_currency"`

	Quantity int64 `gorm:"not null;default:0" json:"quantity"`
}

func (Product) TableName() string { return "products" }

func (p *Product) Price() Money {
	return Money{Amount: p.PriceAmount, Currency: p.PriceCurrency}
}

// Money is an amount in minor units plus ISO currency code.
type Money struct {
	Amount   int64
	Currency string
}

func (m Money) Add(other Money) Money {
	if m.Currency == "" {
		m.Currency = other.Currency
	}
	m.Amount += other.Amount
	return m
}

func (m Money) Mul(qty int64) Money {
	m.Amount *= qty
	return m
}

// Decimal renders the amount as the gateway wire format, e.g. 12345 -> "123.45".
func (m Money) Decimal() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
