package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"LutStore/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger

	// WritesEnabled mounts the POST routes. Off by default so the public
	// contract stays read-only.
	WritesEnabled bool
	// ExposeErrors includes fault causes in 500 bodies. Dev only.
	ExposeErrors bool

	Created *prometheus.CounterVec
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", kit.Readyz(s.Store, s.Log))

	r.Route("/api", func(api chi.Router) {
		api.Route("/products", func(pr chi.Router) {
			pr.Get("/", s.listProducts)
			pr.Get("/featured", s.listFeatured)
			pr.Get("/category/{category}", s.listByCategory)
			pr.Get("/{id}", s.getProduct)
			if s.WritesEnabled {
				pr.Post("/", s.createProduct)
			}
		})

		api.Route("/reviews", func(rr chi.Router) {
			rr.Get("/", s.listReviews)
			rr.Get("/product/{productId}", s.listProductReviews)
			if s.WritesEnabled {
				rr.Post("/", s.createReview)
			}
		})

		api.Route("/before-after", func(br chi.Router) {
			br.Get("/", s.listBeforeAfter)
			br.Get("/product/{productId}", s.listProductBeforeAfter)
			if s.WritesEnabled {
				br.Post("/", s.createBeforeAfter)
			}
		})
	})

	return r
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListProducts(r.Context())
	if err != nil {
		s.fault(w, r, "Failed to fetch products", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) listFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListFeaturedProducts(r.Context())
	if err != nil {
		s.fault(w, r, "Failed to fetch featured products", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.GetProduct(r.Context(), id)
	if err != nil {
		s.fault(w, r, "Failed to fetch product", err, zap.String("id", id))
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "Product not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) listByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := s.Store.ListProductsByCategory(r.Context(), category)
	if err != nil {
		s.fault(w, r, "Failed to fetch products by category", err, zap.String("category", category))
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.Store.ListReviews(r.Context())
	if err != nil {
		s.fault(w, r, "Failed to fetch reviews", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, reviews)
}

func (s *Server) listProductReviews(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "productId")

	reviews, err := s.Store.ListReviewsForProduct(r.Context(), pid)
	if err != nil {
		s.fault(w, r, "Failed to fetch product reviews", err, zap.String("product_id", pid))
		return
	}
	kit.WriteJSON(w, http.StatusOK, reviews)
}

func (s *Server) listBeforeAfter(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.Store.ListBeforeAfter(r.Context())
	if err != nil {
		s.fault(w, r, "Failed to fetch before/after images", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, pairs)
}

func (s *Server) listProductBeforeAfter(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "productId")

	pairs, err := s.Store.ListBeforeAfterForProduct(r.Context(), pid)
	if err != nil {
		s.fault(w, r, "Failed to fetch product before/after images", err, zap.String("product_id", pid))
		return
	}
	kit.WriteJSON(w, http.StatusOK, pairs)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in NewProduct
	if !s.decode(w, r, &in) {
		return
	}
	if err := ValidateNewProduct(in); err != nil {
		kit.WriteValidation(w, r, err)
		return
	}

	p, err := s.Store.CreateProduct(r.Context(), in)
	if err != nil {
		s.fault(w, r, "Failed to create product", err)
		return
	}
	s.countCreated("product")
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	var in NewReview
	if !s.decode(w, r, &in) {
		return
	}
	if err := ValidateNewReview(in); err != nil {
		kit.WriteValidation(w, r, err)
		return
	}
	if !s.productExists(w, r, in.ProductID) {
		return
	}

	rv, err := s.Store.CreateReview(r.Context(), in)
	if err != nil {
		s.fault(w, r, "Failed to create review", err)
		return
	}
	s.countCreated("review")
	kit.WriteJSON(w, http.StatusCreated, rv)
}

func (s *Server) createBeforeAfter(w http.ResponseWriter, r *http.Request) {
	var in NewBeforeAfter
	if !s.decode(w, r, &in) {
		return
	}
	if err := ValidateNewBeforeAfter(in); err != nil {
		kit.WriteValidation(w, r, err)
		return
	}
	if !s.productExists(w, r, in.ProductID) {
		return
	}

	ba, err := s.Store.CreateBeforeAfter(r.Context(), in)
	if err != nil {
		s.fault(w, r, "Failed to create before/after images", err)
		return
	}
	s.countCreated("before_after")
	kit.WriteJSON(w, http.StatusCreated, ba)
}

// decode accepts unknown fields so client supplied id or date are dropped.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := kit.DecodeJSON(w, r, dst, false); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return false
	}
	return true
}

func (s *Server) productExists(w http.ResponseWriter, r *http.Request, id string) bool {
	_, ok, err := s.Store.GetProduct(r.Context(), id)
	if err != nil {
		s.fault(w, r, "Failed to fetch product", err, zap.String("id", id))
		return false
	}
	if !ok {
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "unknown productId", map[string]any{"productId": id})
		return false
	}
	return true
}

func (s *Server) fault(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	if s.Log != nil {
		s.Log.Error(msg, append(fields, zap.Error(err))...)
	}
	kit.WriteFault(w, r, msg, err, s.ExposeErrors)
}

func (s *Server) countCreated(kind string) {
	if s.Created != nil {
		s.Created.WithLabelValues(kind).Inc()
	}
}
