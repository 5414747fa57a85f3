package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	discountports "github.com/dejobratic/storefront/internal/discounts/ports"
	invports "github.com/dejobratic/storefront/internal/inventory/ports"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/google/uuid"
)

// LineItemRequest names a sellable unit and quantity to order. Name and price
// are resolved from the catalog at creation time, not trusted from the caller.
type LineItemRequest struct {
	ProductID string
	VariantID string
	Quantity  int
	Size      string
	Color     string
}

type CreateOrderCommand struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ShippingAddr  string
	Items         []LineItemRequest
	DiscountCode  string
}

func (c CreateOrderCommand) Validate() error {
	if strings.TrimSpace(c.CustomerEmail) == "" {
		return errors.New("customer_email is required")
	}
	if !strings.Contains(c.CustomerEmail, "@") {
		return errors.New("customer_email must be valid")
	}
	if len(c.Items) == 0 {
		return errors.New("at least one line item is required")
	}
	for _, item := range c.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return errors.New("line item product_id is required")
		}
		if item.Quantity <= 0 {
			return errors.New("line item quantity must be positive")
		}
	}
	return nil
}

// CreateOrderHandler handles CreateOrderCommand.
type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	repo      ports.OrderRepository
	catalog   invports.Catalog
	discounts discountports.DiscountRepository
	events    ports.EventBus
	now       func() time.Time
}

func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	catalog invports.Catalog,
	discounts discountports.DiscountRepository,
	events ports.EventBus,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		repo:      repo,
		catalog:   catalog,
		discounts: discounts,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle snapshots catalog prices into line items, evaluates the discount if a
// code was supplied, and persists the order. Stock reservation and discount
// usage are consumed by the repository inside the same unit of work, so a
// failure on any line leaves stock and discounts untouched.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(cmd.Items))
	for _, req := range cmd.Items {
		info, err := h.catalog.ResolveUnit(ctx, domain.LineItem{ProductID: req.ProductID, VariantID: req.VariantID}.Unit())
		if err != nil {
			return nil, fmt.Errorf("resolve unit %s/%s: %w", req.ProductID, req.VariantID, err)
		}

		items = append(items, domain.LineItem{
			ID:             uuid.NewString(),
			ProductID:      req.ProductID,
			VariantID:      req.VariantID,
			Name:           info.Name,
			UnitPriceCents: info.UnitPriceCents,
			Quantity:       req.Quantity,
			Size:           req.Size,
			Color:          req.Color,
		})
	}

	now := h.now()
	subtotal := domain.Subtotal(items)

	var applied *domain.AppliedDiscount
	if cmd.DiscountCode != "" {
		discount, err := h.discounts.GetByCode(ctx, cmd.DiscountCode)
		if err != nil {
			return nil, err
		}

		amount, err := discount.Evaluate(subtotal, now)
		if err != nil {
			return nil, err
		}

		applied = &domain.AppliedDiscount{
			DiscountID:  discount.ID,
			Type:        discount.Type,
			Value:       discount.Value,
			AmountCents: amount,
		}
	}

	var discountCents int64
	if applied != nil {
		discountCents = applied.AmountCents
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		CustomerName:  cmd.CustomerName,
		CustomerEmail: cmd.CustomerEmail,
		CustomerPhone: cmd.CustomerPhone,
		ShippingAddr:  cmd.ShippingAddr,
		Status:        domain.StatusPending,
		Items:         items,
		SubtotalCents: subtotal,
		Discount:      applied,
		TotalCents:    domain.Total(subtotal, discountCents),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderCreated(ctx, order); err != nil {
		return &order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &order, nil
}
