package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/storefront/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
//
// Create persists the order with its line items, reserves stock for every
// line, and consumes a discount use when the order carries one, all in a
// single atomic unit of work. ApplyTransition updates the status with a
// compare-and-set on change.From and applies the stock releases in the same
// transaction; a CAS miss on an existing order surfaces as ErrConflict.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	ApplyTransition(ctx context.Context, change domain.StatusChange) error
}

// ListFilter narrows list queries by status and pagination.
type ListFilter struct {
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrConflict signals a lost optimistic-concurrency race. The operation
	// was not applied; callers may retry it as a whole.
	ErrConflict = errors.New("order was modified concurrently")
)
