package queries

import (
	"context"

	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
)

// ListOrdersQueryHandler returns orders matching a filter.
type ListOrdersQueryHandler struct {
	repo ports.OrderRepository
}

// NewListOrdersQueryHandler constructs a ListOrdersQueryHandler.
func NewListOrdersQueryHandler(repo ports.OrderRepository) *ListOrdersQueryHandler {
	return &ListOrdersQueryHandler{repo: repo}
}

// Handle lists orders. Pagination defaults are applied by the repository.
func (h *ListOrdersQueryHandler) Handle(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return h.repo.List(ctx, filter)
}
