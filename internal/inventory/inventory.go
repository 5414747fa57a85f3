package inventory

import "errors"

// Unit identifies a sellable unit: a bare product, or a specific variant of one.
// An empty VariantID means the product itself is the sellable unit.
type Unit struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
}

// UnitInfo is the catalog snapshot for a sellable unit at resolution time.
type UnitInfo struct {
	Name              string
	UnitPriceCents    int64
	QuantityAvailable int
}

var (
	// ErrInsufficientStock is returned when a reservation would drive the
	// available quantity below zero, or when the unit does not exist.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUnitNotFound is returned by catalog lookups for unknown units.
	ErrUnitNotFound = errors.New("sellable unit not found")
)
