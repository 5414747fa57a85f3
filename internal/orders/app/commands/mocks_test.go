package commands_test

import (
	"context"

	discountdomain "github.com/dejobratic/storefront/internal/discounts/domain"
	"github.com/dejobratic/storefront/internal/inventory"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
)

type mockRepository struct {
	createFn          func(ctx context.Context, order domain.Order) error
	getByIDFn         func(ctx context.Context, id string) (*domain.Order, error)
	applyTransitionFn func(ctx context.Context, change domain.StatusChange) error

	applied []domain.StatusChange
	created []domain.Order
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order) error {
	m.created = append(m.created, order)
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) List(context.Context, ports.ListFilter) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) ApplyTransition(ctx context.Context, change domain.StatusChange) error {
	m.applied = append(m.applied, change)
	if m.applyTransitionFn != nil {
		return m.applyTransitionFn(ctx, change)
	}
	return nil
}

type mockCatalog struct {
	units map[inventory.Unit]inventory.UnitInfo
}

func (m *mockCatalog) ResolveUnit(_ context.Context, unit inventory.Unit) (*inventory.UnitInfo, error) {
	info, ok := m.units[unit]
	if !ok {
		return nil, inventory.ErrUnitNotFound
	}
	return &info, nil
}

type mockDiscounts struct {
	getByCodeFn func(ctx context.Context, code string) (*discountdomain.Discount, error)
}

func (m *mockDiscounts) Create(context.Context, discountdomain.Discount) error { return nil }

func (m *mockDiscounts) GetByCode(ctx context.Context, code string) (*discountdomain.Discount, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

type mockEventBus struct {
	createdFn       func(ctx context.Context, order domain.Order) error
	statusChangedFn func(ctx context.Context, orderID string, from, to domain.OrderStatus) error
	cancelledFn     func(ctx context.Context, orderID string) error

	statusChanged int
	cancelled     int
}

func (m *mockEventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	if m.createdFn != nil {
		return m.createdFn(ctx, order)
	}
	return nil
}

func (m *mockEventBus) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	m.statusChanged++
	if m.statusChangedFn != nil {
		return m.statusChangedFn(ctx, orderID, from, to)
	}
	return nil
}

func (m *mockEventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	m.cancelled++
	if m.cancelledFn != nil {
		return m.cancelledFn(ctx, orderID)
	}
	return nil
}
