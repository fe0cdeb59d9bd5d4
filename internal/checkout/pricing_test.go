package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sale(s string) *string { return &s }

func TestPricer_Quote(t *testing.T) {
	p, err := NewPricer("0.18", "usd")
	require.NoError(t, err)

	q, err := p.Quote([]pricedLine{
		{Product: CatalogProduct{ID: "1", Name: "CineKit", Price: "41.00", SalePrice: sale("31.00")}, Quantity: 2},
		{Product: CatalogProduct{ID: "2", Name: "v2", Price: "41.00"}, Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, q.Lines, 2)
	assert.Equal(t, "31.00", q.Lines[0].UnitPrice)
	assert.Equal(t, "62.00", q.Lines[0].LineTotal)
	assert.Equal(t, "41.00", q.Lines[1].UnitPrice)

	assert.Equal(t, "103.00", q.Subtotal)
	assert.Equal(t, "0.00", q.Shipping)
	assert.Equal(t, "18.54", q.Tax)
	assert.Equal(t, "121.54", q.Total)
	assert.Equal(t, "USD", q.Currency)
}

func TestPricer_TaxRoundsHalfUp(t *testing.T) {
	p, err := NewPricer("0.18", "USD")
	require.NoError(t, err)

	// 0.25 * 0.18 = 0.045
	q, err := p.Quote([]pricedLine{{Product: CatalogProduct{ID: "x", Price: "0.25"}, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "0.05", q.Tax)
	assert.Equal(t, "0.30", q.Total)
}

func TestPricer_EmptySalePriceFallsBack(t *testing.T) {
	p, err := NewPricer("0", "")
	require.NoError(t, err)

	q, err := p.Quote([]pricedLine{{Product: CatalogProduct{ID: "x", Price: "10", SalePrice: sale("")}, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, "10.00", q.Lines[0].UnitPrice)
	assert.Equal(t, "30.00", q.Total)
	assert.Equal(t, "USD", q.Currency)
}

func TestPricer_BadPrice(t *testing.T) {
	p, err := NewPricer("0.18", "USD")
	require.NoError(t, err)

	_, err = p.Quote([]pricedLine{{Product: CatalogProduct{ID: "x", Price: "free"}, Quantity: 1}})
	assert.True(t, errors.Is(err, ErrBadPrice))

	_, err = p.Quote([]pricedLine{{Product: CatalogProduct{ID: "x", Price: "-1.00"}, Quantity: 1}})
	assert.True(t, errors.Is(err, ErrBadPrice))
}

func TestNewPricer_RejectsBadRate(t *testing.T) {
	_, err := NewPricer("abc", "USD")
	assert.Error(t, err)

	_, err = NewPricer("-0.1", "USD")
	assert.Error(t, err)
}
