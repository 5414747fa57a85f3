package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dejobratic/storefront/internal/inventory"
	"github.com/dejobratic/storefront/internal/inventory/ports"
)

var (
	_ ports.StockLedger = (*Ledger)(nil)
	_ ports.Catalog     = (*Ledger)(nil)
)

type record struct {
	info inventory.UnitInfo
}

// Ledger provides an in-memory stock ledger useful for local development and tests.
type Ledger struct {
	mu    sync.Mutex
	units map[inventory.Unit]*record
}

// NewLedger constructs an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{units: make(map[inventory.Unit]*record)}
}

// UpsertUnit registers a sellable unit with its catalog snapshot and stock.
func (l *Ledger) UpsertUnit(_ context.Context, unit inventory.Unit, name string, unitPriceCents int64, quantity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.units[unit] = &record{info: inventory.UnitInfo{
		Name:              name,
		UnitPriceCents:    unitPriceCents,
		QuantityAvailable: quantity,
	}}
	return nil
}

// Reserve decrements available quantity, rejecting decrements below zero.
func (l *Ledger) Reserve(_ context.Context, unit inventory.Unit, quantity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.units[unit]
	if !ok || rec.info.QuantityAvailable < quantity {
		return fmt.Errorf("%w: product %s variant %q", inventory.ErrInsufficientStock, unit.ProductID, unit.VariantID)
	}

	rec.info.QuantityAvailable -= quantity
	return nil
}

// Release increments available quantity.
func (l *Ledger) Release(_ context.Context, unit inventory.Unit, quantity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.units[unit]
	if !ok {
		return fmt.Errorf("%w: product %s variant %q", inventory.ErrUnitNotFound, unit.ProductID, unit.VariantID)
	}

	rec.info.QuantityAvailable += quantity
	return nil
}

// ResolveUnit returns the catalog snapshot for a unit.
func (l *Ledger) ResolveUnit(_ context.Context, unit inventory.Unit) (*inventory.UnitInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.units[unit]
	if !ok {
		return nil, inventory.ErrUnitNotFound
	}

	info := rec.info
	return &info, nil
}
