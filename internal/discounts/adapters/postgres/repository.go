package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/storefront/internal/discounts/domain"
	"github.com/dejobratic/storefront/internal/discounts/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, discount domain.Discount) error {
	query := `
		INSERT INTO discounts (id, code, type, value, min_amount_cents, max_uses, used_count, is_active, starts_at, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		discount.ID,
		discount.Code,
		discount.Type,
		discount.Value,
		discount.MinAmountCents,
		discount.MaxUses,
		discount.UsedCount,
		discount.IsActive,
		discount.StartsAt,
		discount.ExpiresAt,
		discount.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ports.ErrDuplicateCode
		}
		return fmt.Errorf("insert discount: %w", err)
	}

	return nil
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Discount, error) {
	query := `
		SELECT id, code, type, value, min_amount_cents, max_uses, used_count, is_active, starts_at, expires_at, created_at
		FROM discounts
		WHERE code = $1
	`

	var discount domain.Discount
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&discount.ID,
		&discount.Code,
		&discount.Type,
		&discount.Value,
		&discount.MinAmountCents,
		&discount.MaxUses,
		&discount.UsedCount,
		&discount.IsActive,
		&discount.StartsAt,
		&discount.ExpiresAt,
		&discount.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select discount: %w", err)
	}

	return &discount, nil
}

// ConsumeUse increments used_count for a discount, guarded against the usage
// cap. Zero rows affected means a concurrent order took the last use, so the
// enclosing transaction must fail as exhausted.
func ConsumeUse(ctx context.Context, q Querier, discountID string) error {
	query := `
		UPDATE discounts
		SET used_count = used_count + 1
		WHERE id = $1 AND (max_uses IS NULL OR used_count < max_uses)
	`

	result, err := q.Exec(ctx, query, discountID)
	if err != nil {
		return fmt.Errorf("consume discount use: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrExhausted
	}

	return nil
}
