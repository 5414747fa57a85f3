// Package memory provides an in-memory cart store for tests and local
// development without Redis.
package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/storefront/internal/cart"
)

type Store struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[string]cart.Cart)}
}

func (s *Store) Get(_ context.Context, id string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.carts[id]
	if !ok {
		return nil, cart.ErrNotFound
	}

	copied := stored
	copied.Lines = append([]cart.Line(nil), stored.Lines...)
	return &copied, nil
}

func (s *Store) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *c
	stored.Lines = append([]cart.Line(nil), c.Lines...)
	s.carts[c.ID] = stored
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, id)
	return nil
}
