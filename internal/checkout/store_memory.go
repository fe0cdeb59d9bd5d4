package checkout

import (
	"context"
	"errors"
	"sync"
)

var ErrDuplicateOrder = errors.New("order already exists")

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Order
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Order{}}
}

func NewStore() Store {
	return NewMemStore()
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Create(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[o.ID]; ok {
		return ErrDuplicateOrder
	}
	s.m[o.ID] = o.clone()
	return nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.m[id]
	if !ok {
		return Order{}, false, nil
	}
	return o.clone(), true, nil
}
