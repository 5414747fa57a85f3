package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/storefront/internal/discounts/domain"
)

// DiscountRepository exposes persistence operations for discount codes.
type DiscountRepository interface {
	Create(ctx context.Context, discount domain.Discount) error
	GetByCode(ctx context.Context, code string) (*domain.Discount, error)
}

var (
	// ErrNotFound is returned when no discount carries the requested code.
	ErrNotFound = errors.New("discount not found")
	// ErrDuplicateCode is returned when creating a discount with a code already in use.
	ErrDuplicateCode = errors.New("discount code already exists")
)
