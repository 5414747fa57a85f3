package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	discountpg "github.com/dejobratic/storefront/internal/discounts/adapters/postgres"
	discountdomain "github.com/dejobratic/storefront/internal/discounts/domain"
	invpg "github.com/dejobratic/storefront/internal/inventory/postgres"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create persists the order and its line items, reserving stock for every
// line and consuming one discount use when the order carries a discount, all
// in a single transaction. Any failure rolls back every reservation: stock
// and discount counters end up exactly as before the call.
func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, item := range order.Items {
		if err := invpg.Reserve(ctx, tx, item.Unit(), item.Quantity); err != nil {
			return err
		}
	}

	if order.Discount != nil {
		if err := discountpg.ConsumeUse(ctx, tx, order.Discount.DiscountID); err != nil {
			return err
		}
	}

	if err := insertOrder(ctx, tx, order); err != nil {
		return err
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapTxError(err)
	}

	return nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, order domain.Order) error {
	query := `
		INSERT INTO orders (
			id, customer_name, customer_email, customer_phone, shipping_address,
			status, subtotal_cents,
			discount_id, discount_type, discount_value, discount_amount_cents,
			total_cents, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var discountID, discountType *string
	var discountValue, discountAmount *int64
	if order.Discount != nil {
		id := order.Discount.DiscountID
		typ := string(order.Discount.Type)
		value := order.Discount.Value
		amount := order.Discount.AmountCents
		discountID, discountType, discountValue, discountAmount = &id, &typ, &value, &amount
	}

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.ShippingAddr,
		order.Status,
		order.SubtotalCents,
		discountID,
		discountType,
		discountValue,
		discountAmount,
		order.TotalCents,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID string, items []domain.LineItem) error {
	query := `
		INSERT INTO order_items (id, order_id, position, product_id, variant_id, name, unit_price_cents, quantity, size, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for pos, item := range items {
		batch.Queue(query,
			item.ID,
			orderID,
			pos,
			item.ProductID,
			item.VariantID,
			item.Name,
			item.UnitPriceCents,
			item.Quantity,
			item.Size,
			item.Color,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `
	id, customer_name, customer_email, customer_phone, shipping_address,
	status, subtotal_cents,
	discount_id, discount_type, discount_value, discount_amount_cents,
	total_cents, created_at, updated_at
`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var discountID, discountType *string
	var discountValue, discountAmount *int64

	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.ShippingAddr,
		&order.Status,
		&order.SubtotalCents,
		&discountID,
		&discountType,
		&discountValue,
		&discountAmount,
		&order.TotalCents,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discountID != nil {
		order.Discount = &domain.AppliedDiscount{
			DiscountID:  *discountID,
			Type:        discountdomain.DiscountType(*discountType),
			Value:       *discountValue,
			AmountCents: *discountAmount,
		}
	}

	return &order, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return order, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, statusFilter, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}

	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.LineItem, error) {
	query := `
		SELECT order_id, id, product_id, variant_id, name, unit_price_cents, quantity, size, color
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.LineItem, len(orderIDs))
	for rows.Next() {
		var orderID string
		var item domain.LineItem
		if err := rows.Scan(
			&orderID,
			&item.ID,
			&item.ProductID,
			&item.VariantID,
			&item.Name,
			&item.UnitPriceCents,
			&item.Quantity,
			&item.Size,
			&item.Color,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		result[orderID] = append(result[orderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return result, nil
}

// ApplyTransition updates the status with a compare-and-set against the prior
// status and applies every stock release in the same transaction. A CAS miss
// on an order that still exists means a concurrent writer got there first.
func (r *Repository) ApplyTransition(ctx context.Context, change domain.StatusChange) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := tx.Exec(ctx, query, change.To, time.Now().UTC(), change.OrderID, change.From)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, change.OrderID).Scan(&exists); err != nil {
			return fmt.Errorf("check order existence: %w", err)
		}
		if !exists {
			return ports.ErrNotFound
		}
		return ports.ErrConflict
	}

	for _, release := range change.Releases {
		if err := invpg.Release(ctx, tx, release.Unit, release.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return mapTxError(err)
	}

	return nil
}

// mapTxError surfaces serialization failures and deadlocks as the retryable
// conflict error.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%w: %s", ports.ErrConflict, pgErr.Message)
	}
	return fmt.Errorf("commit transaction: %w", err)
}
