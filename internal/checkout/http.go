package checkout

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"LutStore/pkg/kit"
)

type Server struct {
	Store   Store
	Catalog Catalog
	Pricer  Pricer
	Log     *zap.Logger

	// Idempotency is optional. Without it Idempotency-Key headers are ignored.
	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration

	ExposeErrors bool

	Orders prometheus.Counter

	now   func() time.Time
	newID func() string
}

type QuoteRequest struct {
	Items []CartLine `json:"items" validate:"required,min=1,max=50,unique=ProductID,dive"`
}

type OrderRequest struct {
	Email string     `json:"email" validate:"required,email,max=254"`
	Items []CartLine `json:"items" validate:"required,min=1,max=50,unique=ProductID,dive"`
}

var (
	errInvalidProduct  = errors.New("invalid productId")
	errCatalogDown     = errors.New("catalog unavailable")
	errCatalogUpstream = errors.New("catalog error")
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", kit.Readyz(s.Store, s.Log))

	r.Route("/api/checkout", func(cr chi.Router) {
		cr.Post("/quote", s.quote)
		cr.With(Idempotent(s.Idempotency, s.IdempotencyTTL, s.Log)).Post("/orders", s.placeOrder)
		cr.Get("/orders/{id}", s.getOrder)
	})

	return r
}

func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := kit.DecodeJSON(w, r, &req, true); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := validateRequest(req); err != nil {
		kit.WriteValidation(w, r, err)
		return
	}

	q, err := s.price(r.Context(), req.Items)
	if err != nil {
		s.writePriceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, q)
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := kit.DecodeJSON(w, r, &req, true); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := validateRequest(req); err != nil {
		kit.WriteValidation(w, r, err)
		return
	}

	q, err := s.price(r.Context(), req.Items)
	if err != nil {
		s.writePriceError(w, r, err)
		return
	}

	// payment is mocked and always succeeds
	o := Order{
		ID:        "o_" + s.id(),
		Email:     req.Email,
		Quote:     q,
		Status:    StatusPaid,
		CreatedAt: s.clock(),
	}

	if err := s.Store.Create(r.Context(), o); err != nil {
		if isTimeoutErr(err) {
			kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
			return
		}
		s.fault(w, r, "Failed to place order", err)
		return
	}

	if s.Orders != nil {
		s.Orders.Inc()
	}
	if s.Log != nil {
		s.Log.Info("order placed", zap.String("order_id", o.ID), zap.String("total", q.Total))
	}
	kit.WriteJSON(w, http.StatusCreated, o)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.fault(w, r, "Failed to fetch order", err, zap.String("order_id", id))
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "Order not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

type unknownProductError struct {
	id string
}

func (e *unknownProductError) Error() string { return "invalid productId: " + e.id }
func (e *unknownProductError) Unwrap() error { return errInvalidProduct }

// price resolves every line against the catalog, in request order.
func (s *Server) price(ctx context.Context, items []CartLine) (Quote, error) {
	lines := make([]pricedLine, 0, len(items))
	for _, it := range items {
		p, err := s.Catalog.GetProduct(ctx, it.ProductID)
		if err != nil {
			switch {
			case errors.Is(err, ErrCatalogNotFound):
				return Quote{}, &unknownProductError{id: it.ProductID}
			case errors.Is(err, ErrCatalogUnavailable):
				s.warn("catalog unavailable", err, it.ProductID)
				return Quote{}, errCatalogDown
			default:
				s.warn("catalog error", err, it.ProductID)
				return Quote{}, errCatalogUpstream
			}
		}
		lines = append(lines, pricedLine{Product: p, Quantity: it.Quantity})
	}

	q, err := s.Pricer.Quote(lines)
	if err != nil {
		s.warn("catalog price unusable", err, "")
		return Quote{}, errCatalogUpstream
	}
	return q, nil
}

func (s *Server) writePriceError(w http.ResponseWriter, r *http.Request, err error) {
	var upe *unknownProductError
	switch {
	case errors.As(err, &upe):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid productId", map[string]any{"productId": upe.id})
	case errors.Is(err, errCatalogDown):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	case errors.Is(err, errCatalogUpstream):
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
	default:
		s.fault(w, r, "Failed to price cart", err)
	}
}

func (s *Server) fault(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	if s.Log != nil {
		s.Log.Error(msg, append(fields, zap.Error(err))...)
	}
	kit.WriteFault(w, r, msg, err, s.ExposeErrors)
}

func (s *Server) warn(msg string, err error, productID string) {
	if s.Log == nil {
		return
	}
	s.Log.Warn(msg, zap.Error(err), zap.String("product_id", productID))
}

func (s *Server) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *Server) id() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
