package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney_Decimal(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{amount: 0, want: "0.00"},
		{amount: 5, want: "0.05"},
		{amount: 100, want: "1.00"},
		{amount: 12345, want: "123.45"},
		{amount: -250, want: "-2.50"},
	}
	for _, tc := range cases {
		got := Money{Amount: tc.amount, Currency: "RUB"}.Decimal()

		assert.Equal(t, tc.want, got)
	}
}

func TestMoney_AddAndMul(t *testing.T) {
	unit := Money{Amount: 1999, Currency: "RUB"}

	line := unit.Mul(3)
	assert.Equal(t, int64(5997), line.Amount)

	total := Money{}.Add(line).Add(Money{Amount: 500, Currency: "RUB"})
	assert.Equal(t, int64(6497), total.Amount)
	assert.Equal(t, "RUB", total.Currency)
}

func TestProduct_Price(t *testing.T) {
	p := Product{PriceAmount: 4200, PriceCurrency: "RUB"}

	assert.Equal(t, Money{Amount: 4200, Currency: "RUB"}, p.Price())
}
