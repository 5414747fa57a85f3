package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DiscountType distinguishes percentage and fixed-amount discounts.
type DiscountType string

const (
	TypePercentage  DiscountType = "percentage"
	TypeFixedAmount DiscountType = "fixed_amount"
)

var (
	// ErrInactive is returned when the discount is disabled or outside its validity window.
	ErrInactive = errors.New("discount is not active")
	// ErrExhausted is returned when the discount has no uses left.
	ErrExhausted = errors.New("discount usage limit reached")
	// ErrMinimumNotMet is returned when the order subtotal is below the eligibility floor.
	ErrMinimumNotMet = errors.New("order subtotal below discount minimum")
)

// Discount is a coded, time/usage-bounded rule reducing an order's payable total.
// Value is a percentage in (0,100] for TypePercentage, an amount in cents for
// TypeFixedAmount.
type Discount struct {
	ID             string       `json:"id"`
	Code           string       `json:"code"`
	Type           DiscountType `json:"type"`
	Value          int64        `json:"value"`
	MinAmountCents *int64       `json:"min_amount_cents,omitempty"`
	MaxUses        *int         `json:"max_uses,omitempty"`
	UsedCount      int          `json:"used_count"`
	IsActive       bool         `json:"is_active"`
	StartsAt       *time.Time   `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time   `json:"expires_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Validate ensures the discount definition adheres to business constraints.
func (d Discount) Validate() error {
	if strings.TrimSpace(d.Code) == "" {
		return errors.New("code is required")
	}
	switch d.Type {
	case TypePercentage:
		if d.Value <= 0 || d.Value > 100 {
			return errors.New("percentage value must be in (0, 100]")
		}
	case TypeFixedAmount:
		if d.Value <= 0 {
			return errors.New("fixed amount value must be positive")
		}
	default:
		return fmt.Errorf("unknown discount type %q", d.Type)
	}
	if d.MinAmountCents != nil && *d.MinAmountCents < 0 {
		return errors.New("min_amount_cents must not be negative")
	}
	if d.MaxUses != nil && *d.MaxUses <= 0 {
		return errors.New("max_uses must be positive")
	}
	return nil
}

// Evaluate checks applicability against the subtotal at the given instant and
// computes the discount amount in cents. It never mutates usage counts; the
// caller consumes a use inside the same unit of work that persists the order.
func (d Discount) Evaluate(subtotalCents int64, now time.Time) (int64, error) {
	if !d.IsActive {
		return 0, ErrInactive
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return 0, ErrInactive
	}
	if d.ExpiresAt != nil && now.After(*d.ExpiresAt) {
		return 0, ErrInactive
	}
	if d.MaxUses != nil && d.UsedCount >= *d.MaxUses {
		return 0, ErrExhausted
	}
	if d.MinAmountCents != nil && subtotalCents < *d.MinAmountCents {
		return 0, ErrMinimumNotMet
	}

	switch d.Type {
	case TypePercentage:
		return subtotalCents * d.Value / 100, nil
	case TypeFixedAmount:
		// A fixed discount never exceeds the subtotal, so totals cannot go negative.
		if d.Value > subtotalCents {
			return subtotalCents, nil
		}
		return d.Value, nil
	default:
		return 0, fmt.Errorf("unknown discount type %q", d.Type)
	}
}
