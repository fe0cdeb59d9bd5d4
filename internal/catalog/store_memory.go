package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore keeps every collection in process memory. Iteration follows
// insertion order; one RWMutex guards all three collections.
type MemStore struct {
	mu sync.RWMutex

	products   map[string]Product
	productIDs []string

	reviews   map[string]Review
	reviewIDs []string

	pairs   map[string]BeforeAfter
	pairIDs []string

	now   func() time.Time
	newID func() string
}

type MemOption func(*MemStore)

// WithClock overrides the clock used to stamp new reviews.
func WithClock(now func() time.Time) MemOption {
	return func(s *MemStore) { s.now = now }
}

// WithIDGenerator overrides uuid-based identifier generation.
func WithIDGenerator(gen func() string) MemOption {
	return func(s *MemStore) { s.newID = gen }
}

// NewMemStore returns a store preloaded with the seed catalog.
func NewMemStore(opts ...MemOption) *MemStore {
	s := NewEmptyMemStore(opts...)
	s.Seed(SeedProducts(), SeedReviews(), SeedBeforeAfter())
	return s
}

func NewEmptyMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		products: map[string]Product{},
		reviews:  map[string]Review{},
		pairs:    map[string]BeforeAfter{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewStore() Store {
	return NewMemStore()
}

// Seed loads entities with their fixed identifiers. Entities whose id is
// already present are skipped.
func (s *MemStore) Seed(products []Product, reviews []Review, pairs []BeforeAfter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if _, ok := s.products[p.ID]; ok {
			continue
		}
		s.products[p.ID] = p.clone()
		s.productIDs = append(s.productIDs, p.ID)
	}
	for _, r := range reviews {
		if _, ok := s.reviews[r.ID]; ok {
			continue
		}
		s.reviews[r.ID] = r
		s.reviewIDs = append(s.reviewIDs, r.ID)
	}
	for _, ba := range pairs {
		if _, ok := s.pairs[ba.ID]; ok {
			continue
		}
		s.pairs[ba.ID] = ba
		s.pairIDs = append(s.pairIDs, ba.ID)
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListProducts(ctx context.Context) ([]Product, error) {
	return s.filterProducts(func(Product) bool { return true }), nil
}

func (s *MemStore) GetProduct(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, false, nil
	}
	return p.clone(), true, nil
}

func (s *MemStore) ListFeaturedProducts(ctx context.Context) ([]Product, error) {
	return s.filterProducts(func(p Product) bool { return p.IsFeatured }), nil
}

func (s *MemStore) ListProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	return s.filterProducts(func(p Product) bool { return p.Category == category }), nil
}

func (s *MemStore) CreateProduct(ctx context.Context, in NewProduct) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.uniqueID(func(id string) bool { _, ok := s.products[id]; return ok })
	p := in.withID(id)
	s.products[id] = p
	s.productIDs = append(s.productIDs, id)
	return p.clone(), nil
}

func (s *MemStore) ListReviews(ctx context.Context) ([]Review, error) {
	return s.filterReviews(func(Review) bool { return true }), nil
}

func (s *MemStore) ListReviewsForProduct(ctx context.Context, productID string) ([]Review, error) {
	return s.filterReviews(func(r Review) bool { return r.ProductID == productID }), nil
}

func (s *MemStore) CreateReview(ctx context.Context, in NewReview) (Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.uniqueID(func(id string) bool { _, ok := s.reviews[id]; return ok })
	r := in.withID(id, s.now())
	s.reviews[id] = r
	s.reviewIDs = append(s.reviewIDs, id)
	return r, nil
}

func (s *MemStore) ListBeforeAfter(ctx context.Context) ([]BeforeAfter, error) {
	return s.filterPairs(func(BeforeAfter) bool { return true }), nil
}

func (s *MemStore) ListBeforeAfterForProduct(ctx context.Context, productID string) ([]BeforeAfter, error) {
	return s.filterPairs(func(ba BeforeAfter) bool { return ba.ProductID == productID }), nil
}

func (s *MemStore) CreateBeforeAfter(ctx context.Context, in NewBeforeAfter) (BeforeAfter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.uniqueID(func(id string) bool { _, ok := s.pairs[id]; return ok })
	ba := in.withID(id)
	s.pairs[id] = ba
	s.pairIDs = append(s.pairIDs, id)
	return ba, nil
}

// uniqueID draws ids until one is free. With uuids the loop runs once; it
// only matters for injected generators in tests.
func (s *MemStore) uniqueID(taken func(string) bool) string {
	for {
		if id := s.newID(); !taken(id) {
			return id
		}
	}
}

func (s *MemStore) filterProducts(keep func(Product) bool) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.productIDs))
	for _, id := range s.productIDs {
		if p := s.products[id]; keep(p) {
			out = append(out, p.clone())
		}
	}
	return out
}

func (s *MemStore) filterReviews(keep func(Review) bool) []Review {
	s.mu.RLock()
	out := make([]Review, 0, len(s.reviewIDs))
	for _, id := range s.reviewIDs {
		if r := s.reviews[id]; keep(r) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sortReviewsNewestFirst(out)
	return out
}

func (s *MemStore) filterPairs(keep func(BeforeAfter) bool) []BeforeAfter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]BeforeAfter, 0, len(s.pairIDs))
	for _, id := range s.pairIDs {
		if ba := s.pairs[id]; keep(ba) {
			out = append(out, ba)
		}
	}
	return out
}
