package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/storefront/internal/discounts/domain"
	"github.com/dejobratic/storefront/internal/discounts/ports"
)

// Repository provides an in-memory discount store for local development and tests.
type Repository struct {
	mu        sync.Mutex
	byCode    map[string]string
	discounts map[string]domain.Discount
}

// NewRepository constructs an empty in-memory discount repository.
func NewRepository() *Repository {
	return &Repository{
		byCode:    make(map[string]string),
		discounts: make(map[string]domain.Discount),
	}
}

func (r *Repository) Create(_ context.Context, discount domain.Discount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[discount.Code]; exists {
		return ports.ErrDuplicateCode
	}

	r.byCode[discount.Code] = discount.ID
	r.discounts[discount.ID] = discount
	return nil
}

func (r *Repository) GetByCode(_ context.Context, code string) (*domain.Discount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byCode[code]
	if !ok {
		return nil, ports.ErrNotFound
	}

	discount := r.discounts[id]
	return &discount, nil
}

// ConsumeUse increments used_count under the usage cap, mirroring the guarded
// UPDATE the postgres adapter runs inside the order transaction.
func (r *Repository) ConsumeUse(_ context.Context, discountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	discount, ok := r.discounts[discountID]
	if !ok {
		return ports.ErrNotFound
	}

	if discount.MaxUses != nil && discount.UsedCount >= *discount.MaxUses {
		return domain.ErrExhausted
	}

	discount.UsedCount++
	r.discounts[discountID] = discount
	return nil
}
