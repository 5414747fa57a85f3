package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dejobratic/storefront/internal/discounts/domain"
	"github.com/dejobratic/storefront/internal/inventory"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// ErrInvalidStatus is returned for unrecognized statuses and for transitions
// the table below does not allow.
var ErrInvalidStatus = errors.New("invalid order status")

// transitions is the single source of truth for allowed status changes.
// Progression is strictly linear; cancellation is reachable from every
// non-terminal state. Delivered and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseStatus maps external input onto a known status, case-insensitively.
func ParseStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// CanTransitionTo reports whether the table allows moving from s to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal indicates whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// LineItem is one entry in an order: a quantity of one sellable unit at a
// price snapshotted when the order was created. Snapshots are immutable and
// independent of later catalog edits.
type LineItem struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id,omitempty"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	Size           string `json:"size,omitempty"`
	Color          string `json:"color,omitempty"`
}

// Unit identifies the sellable unit this line reserves stock against.
func (li LineItem) Unit() inventory.Unit {
	return inventory.Unit{ProductID: li.ProductID, VariantID: li.VariantID}
}

// AppliedDiscount freezes the discount evaluation outcome on the order.
// All fields are set together or the order carries no discount at all.
type AppliedDiscount struct {
	DiscountID  string              `json:"discount_id"`
	Type        domain.DiscountType `json:"type"`
	Value       int64               `json:"value"`
	AmountCents int64               `json:"amount_cents"`
}

// Order is the aggregate root owning an ordered, non-empty sequence of line
// items. Money fields are fixed at creation time.
type Order struct {
	ID            string           `json:"id"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	CustomerPhone string           `json:"customer_phone,omitempty"`
	ShippingAddr  string           `json:"shipping_address,omitempty"`
	Status        OrderStatus      `json:"status"`
	Items         []LineItem       `json:"items"`
	SubtotalCents int64            `json:"subtotal_cents"`
	Discount      *AppliedDiscount `json:"discount,omitempty"`
	TotalCents    int64            `json:"total_cents"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Subtotal sums unit price times quantity over the line items.
func Subtotal(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPriceCents * int64(item.Quantity)
	}
	return total
}

// Total computes the payable amount, floored at zero.
func Total(subtotalCents, discountCents int64) int64 {
	total := subtotalCents - discountCents
	if total < 0 {
		return 0
	}
	return total
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.CustomerEmail) == "" {
		return errors.New("customer_email is required")
	}
	if !strings.Contains(o.CustomerEmail, "@") {
		return errors.New("customer_email must be valid")
	}
	if len(o.Items) == 0 {
		return errors.New("order must contain at least one line item")
	}
	for _, item := range o.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return errors.New("line item product_id is required")
		}
		if item.Quantity <= 0 {
			return errors.New("line item quantity must be positive")
		}
		if item.UnitPriceCents < 0 {
			return errors.New("line item unit price must not be negative")
		}
	}
	if o.SubtotalCents != Subtotal(o.Items) {
		return errors.New("subtotal does not match line items")
	}
	var discountCents int64
	if o.Discount != nil {
		discountCents = o.Discount.AmountCents
		if discountCents > o.SubtotalCents {
			return errors.New("discount must not exceed subtotal")
		}
	}
	if o.TotalCents != Total(o.SubtotalCents, discountCents) {
		return errors.New("total does not match subtotal and discount")
	}
	return nil
}

// IsTerminal indicates whether the order is in a terminal state.
func (o Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// StockRelease restores reserved quantity for one sellable unit.
type StockRelease struct {
	Unit     inventory.Unit
	Quantity int
}

// StatusChange describes a validated transition for the storage layer to
// apply atomically: the status update is compare-and-set against From, and
// every release in Releases happens in the same transaction or none do.
type StatusChange struct {
	OrderID  string
	From     OrderStatus
	To       OrderStatus
	Releases []StockRelease
}

// PlanTransition validates a requested status change against the table and
// produces the change to apply. Cancelling restores stock for every line item.
func (o Order) PlanTransition(target OrderStatus) (*StatusChange, error) {
	if !o.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, o.Status, target)
	}

	change := &StatusChange{OrderID: o.ID, From: o.Status, To: target}

	if target == StatusCancelled {
		change.Releases = make([]StockRelease, 0, len(o.Items))
		for _, item := range o.Items {
			change.Releases = append(change.Releases, StockRelease{Unit: item.Unit(), Quantity: item.Quantity})
		}
	}

	return change, nil
}
