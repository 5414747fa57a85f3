package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/storefront/internal/inventory"
	invports "github.com/dejobratic/storefront/internal/inventory/ports"
)

// Store persists carts keyed by session ID.
type Store interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

// AddItemInput captures a single add-to-cart request.
type AddItemInput struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Service consolidates cart mutations and snapshots catalog data onto each
// line as it is touched.
type Service struct {
	store   Store
	catalog invports.Catalog
	now     func() time.Time
}

func NewService(store Store, catalog invports.Catalog) *Service {
	return &Service{store: store, catalog: catalog, now: time.Now}
}

// Get returns the cart for the session, or an empty cart when none exists.
func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	c, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return New(id), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem resolves the unit against the catalog, merges it into the cart
// and persists the result.
func (s *Service) AddItem(ctx context.Context, id string, input AddItemInput) (*Cart, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("product_id is required")
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	info, err := s.catalog.ResolveUnit(ctx, inventory.Unit{ProductID: input.ProductID, VariantID: input.VariantID})
	if err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Add(Line{
		ProductID:      input.ProductID,
		VariantID:      input.VariantID,
		Size:           input.Size,
		Color:          input.Color,
		Name:           info.Name,
		UnitPriceCents: info.UnitPriceCents,
		Quantity:       input.Quantity,
		MaxQuantity:    info.QuantityAvailable,
	})
	c.UpdatedAt = s.now()

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetItemQuantity replaces the quantity of the matching line; zero or less
// removes it. Returns ErrNotFound when no line matches.
func (s *Service) SetItemQuantity(ctx context.Context, id, productID, size, color string, quantity int) (*Cart, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !c.SetQuantity(productID, size, color, quantity) {
		return nil, fmt.Errorf("%w: no line for product %q", ErrNotFound, productID)
	}
	c.UpdatedAt = s.now()

	if c.IsEmpty() {
		if err := s.store.Delete(ctx, id); err != nil {
			return nil, err
		}
		return c, nil
	}

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear discards the session's cart, typically after a successful checkout.
func (s *Service) Clear(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
