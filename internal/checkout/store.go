package checkout

import (
	"context"
	"slices"
	"time"
)

const StatusPaid = "PAID"

type CartLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=100"`
}

// QuoteLine is one priced cart line. UnitPrice is the sale price when the
// product has one.
type QuoteLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

type Quote struct {
	Lines    []QuoteLine `json:"lines"`
	Subtotal string      `json:"subtotal"`
	Shipping string      `json:"shipping"`
	Tax      string      `json:"tax"`
	Total    string      `json:"total"`
	Currency string      `json:"currency"`
}

type Order struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Quote     Quote     `json:"quote"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, bool, error)
}

func (o Order) clone() Order {
	o.Quote.Lines = slices.Clone(o.Quote.Lines)
	return o
}
