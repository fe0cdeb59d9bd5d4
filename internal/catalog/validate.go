package catalog

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"LutStore/pkg/kit"
)

type ValidationError = kit.ValidationError

var validate = newValidator()

var messages = map[string]string{
	"money":     "must be a non-negative decimal with at most 2 places",
	"lte_price": "must not exceed price",
}

func newValidator() *validator.Validate {
	v := kit.NewValidator()
	if err := v.RegisterValidation("money", validateMoney); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(validateSalePrice, NewProduct{})
	return v
}

func ValidateNewProduct(in NewProduct) error         { return kit.CheckStruct(validate, in, messages) }
func ValidateNewReview(in NewReview) error           { return kit.CheckStruct(validate, in, messages) }
func ValidateNewBeforeAfter(in NewBeforeAfter) error { return kit.CheckStruct(validate, in, messages) }

// parseMoney parses a price string. Negative values and more than two
// decimal places are rejected.
func parseMoney(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.Exponent() < -2 {
		return decimal.Decimal{}, false
	}
	return d, true
}

func validateMoney(fl validator.FieldLevel) bool {
	_, ok := parseMoney(fl.Field().String())
	return ok
}

func validateSalePrice(sl validator.StructLevel) {
	p := sl.Current().Interface().(NewProduct)
	if p.SalePrice == nil {
		return
	}

	price, ok := parseMoney(p.Price)
	if !ok {
		return
	}
	sale, ok := parseMoney(*p.SalePrice)
	if !ok {
		return
	}
	if sale.GreaterThan(price) {
		sl.ReportError(p.SalePrice, "salePrice", "SalePrice", "lte_price", "")
	}
}
