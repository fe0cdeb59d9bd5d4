package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var ErrBadPrice = errors.New("catalog returned an unusable price")

// Pricer turns resolved cart lines into a Quote. Shipping for digital
// goods is always zero.
type Pricer struct {
	TaxRate  decimal.Decimal
	Currency string
}

func NewPricer(taxRate, currency string) (Pricer, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(taxRate))
	if err != nil {
		return Pricer{}, fmt.Errorf("parse tax rate %q: %w", taxRate, err)
	}
	if rate.IsNegative() {
		return Pricer{}, fmt.Errorf("tax rate %q is negative", taxRate)
	}
	if currency == "" {
		currency = "USD"
	}
	return Pricer{TaxRate: rate, Currency: strings.ToUpper(currency)}, nil
}

type pricedLine struct {
	Product  CatalogProduct
	Quantity int
}

func (p Pricer) Quote(items []pricedLine) (Quote, error) {
	q := Quote{
		Lines:    make([]QuoteLine, 0, len(items)),
		Currency: p.Currency,
	}

	subtotal := decimal.Zero
	for _, it := range items {
		unit, err := decimal.NewFromString(it.Product.UnitPrice())
		if err != nil || unit.IsNegative() {
			return Quote{}, fmt.Errorf("%w: product %s", ErrBadPrice, it.Product.ID)
		}

		line := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)

		q.Lines = append(q.Lines, QuoteLine{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			UnitPrice: unit.StringFixed(moneyPlaces),
			Quantity:  it.Quantity,
			LineTotal: line.StringFixed(moneyPlaces),
		})
	}

	shipping := decimal.Zero
	tax := subtotal.Mul(p.TaxRate).Round(moneyPlaces)
	total := subtotal.Add(shipping).Add(tax)

	q.Subtotal = subtotal.StringFixed(moneyPlaces)
	q.Shipping = shipping.StringFixed(moneyPlaces)
	q.Tax = tax.StringFixed(moneyPlaces)
	q.Total = total.StringFixed(moneyPlaces)
	return q, nil
}
