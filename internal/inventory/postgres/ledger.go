package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/storefront/internal/inventory"
	"github.com/dejobratic/storefront/internal/inventory/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ ports.StockLedger = (*Ledger)(nil)
	_ ports.Catalog     = (*Ledger)(nil)
)

// Querier is the subset of pgx operations the ledger needs. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so the same statements run standalone or inside an
// order's transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger is the postgres-backed stock ledger.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) Reserve(ctx context.Context, unit inventory.Unit, quantity int) error {
	return Reserve(ctx, l.pool, unit, quantity)
}

func (l *Ledger) Release(ctx context.Context, unit inventory.Unit, quantity int) error {
	return Release(ctx, l.pool, unit, quantity)
}

// Reserve decrements the available quantity for a unit. The guard in the WHERE
// clause rejects decrements that would go negative; the row update itself
// serializes concurrent reservations on the same unit.
func Reserve(ctx context.Context, q Querier, unit inventory.Unit, quantity int) error {
	query := `
		UPDATE stock_units
		SET quantity_available = quantity_available - $3
		WHERE product_id = $1 AND variant_id = $2 AND quantity_available >= $3
	`

	result, err := q.Exec(ctx, query, unit.ProductID, unit.VariantID, quantity)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s variant %q", inventory.ErrInsufficientStock, unit.ProductID, unit.VariantID)
	}

	return nil
}

// Release increments the available quantity for a unit. No upper bound is enforced.
func Release(ctx context.Context, q Querier, unit inventory.Unit, quantity int) error {
	query := `
		UPDATE stock_units
		SET quantity_available = quantity_available + $3
		WHERE product_id = $1 AND variant_id = $2
	`

	result, err := q.Exec(ctx, query, unit.ProductID, unit.VariantID, quantity)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s variant %q", inventory.ErrUnitNotFound, unit.ProductID, unit.VariantID)
	}

	return nil
}

// ResolveUnit returns the catalog snapshot for a unit.
func (l *Ledger) ResolveUnit(ctx context.Context, unit inventory.Unit) (*inventory.UnitInfo, error) {
	query := `
		SELECT name, unit_price_cents, quantity_available
		FROM stock_units
		WHERE product_id = $1 AND variant_id = $2
	`

	var info inventory.UnitInfo
	err := l.pool.QueryRow(ctx, query, unit.ProductID, unit.VariantID).Scan(
		&info.Name,
		&info.UnitPriceCents,
		&info.QuantityAvailable,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventory.ErrUnitNotFound
		}
		return nil, fmt.Errorf("select stock unit: %w", err)
	}

	return &info, nil
}

// UpsertUnit creates or replaces a sellable unit row. Staff-facing: used to
// register catalog entries and restock.
func (l *Ledger) UpsertUnit(ctx context.Context, unit inventory.Unit, name string, unitPriceCents int64, quantity int) error {
	query := `
		INSERT INTO stock_units (product_id, variant_id, name, unit_price_cents, quantity_available)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, variant_id) DO UPDATE
		SET name = EXCLUDED.name,
		    unit_price_cents = EXCLUDED.unit_price_cents,
		    quantity_available = EXCLUDED.quantity_available
	`

	_, err := l.pool.Exec(ctx, query, unit.ProductID, unit.VariantID, name, unitPriceCents, quantity)
	if err != nil {
		return fmt.Errorf("upsert stock unit: %w", err)
	}

	return nil
}
