package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	discountmemory "github.com/dejobratic/storefront/internal/discounts/adapters/memory"
	invmemory "github.com/dejobratic/storefront/internal/inventory/memory"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
)

// Repository provides an in-memory order store useful for local development
// and tests. It honors the same all-or-nothing semantics as the postgres
// adapter: a failed reservation or discount consumption compensates every
// adjustment already made.
type Repository struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	ledger    *invmemory.Ledger
	discounts *discountmemory.Repository
}

// NewRepository constructs a new in-memory repository over the given ledger
// and discount store.
func NewRepository(ledger *invmemory.Ledger, discounts *discountmemory.Repository) *Repository {
	return &Repository{
		orders:    make(map[string]domain.Order),
		ledger:    ledger,
		discounts: discounts,
	}
}

// Create stores a new order, reserving stock for every line item first.
func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reserved := make([]domain.LineItem, 0, len(order.Items))
	rollback := func() {
		for _, item := range reserved {
			_ = r.ledger.Release(ctx, item.Unit(), item.Quantity)
		}
	}

	for _, item := range order.Items {
		if err := r.ledger.Reserve(ctx, item.Unit(), item.Quantity); err != nil {
			rollback()
			return err
		}
		reserved = append(reserved, item)
	}

	if order.Discount != nil {
		if err := r.discounts.ConsumeUse(ctx, order.Discount.DiscountID); err != nil {
			rollback()
			return err
		}
	}

	r.orders[order.ID] = order
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}

	copied := order
	copied.Items = append([]domain.LineItem(nil), order.Items...)
	return &copied, nil
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Order
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Order{}, nil
	}

	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	slice := make([]domain.Order, end-start)
	copy(slice, result[start:end])

	return slice, nil
}

// ApplyTransition updates the status, compare-and-set against change.From,
// and applies the stock releases.
func (r *Repository) ApplyTransition(ctx context.Context, change domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[change.OrderID]
	if !ok {
		return ports.ErrNotFound
	}

	if order.Status != change.From {
		return ports.ErrConflict
	}

	for _, release := range change.Releases {
		if err := r.ledger.Release(ctx, release.Unit, release.Quantity); err != nil {
			return err
		}
	}

	order.Status = change.To
	order.UpdatedAt = time.Now().UTC()
	r.orders[change.OrderID] = order
	return nil
}
