package ports

import (
	"context"

	"github.com/dejobratic/storefront/internal/inventory"
)

// StockLedger tracks the available quantity per sellable unit.
//
// Reserve and Release adjust a single unit row. When an order touches several
// units, the enclosing adapter must group the calls into one atomic unit of
// work so that either every line adjusts stock or none does.
type StockLedger interface {
	Reserve(ctx context.Context, unit inventory.Unit, quantity int) error
	Release(ctx context.Context, unit inventory.Unit, quantity int) error
}

// Catalog resolves the current price, name and availability of a sellable unit.
type Catalog interface {
	ResolveUnit(ctx context.Context, unit inventory.Unit) (*inventory.UnitInfo, error)
}
