package memory_test

import (
	"context"
	"errors"
	"testing"

	discountmemory "github.com/dejobratic/storefront/internal/discounts/adapters/memory"
	discountdomain "github.com/dejobratic/storefront/internal/discounts/domain"
	"github.com/dejobratic/storefront/internal/inventory"
	invmemory "github.com/dejobratic/storefront/internal/inventory/memory"
	"github.com/dejobratic/storefront/internal/orders/adapters/memory"
	"github.com/dejobratic/storefront/internal/orders/app/commands"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
)

type noopEventBus struct{}

func (noopEventBus) PublishOrderCreated(context.Context, domain.Order) error { return nil }
func (noopEventBus) PublishOrderStatusChanged(context.Context, string, domain.OrderStatus, domain.OrderStatus) error {
	return nil
}
func (noopEventBus) PublishOrderCancelled(context.Context, string) error { return nil }

type fixture struct {
	ledger     *invmemory.Ledger
	discounts  *discountmemory.Repository
	repo       *memory.Repository
	create     *commands.CreateOrderCommandHandler
	transition *commands.TransitionOrderCommandHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ledger := invmemory.NewLedger()
	discounts := discountmemory.NewRepository()
	repo := memory.NewRepository(ledger, discounts)

	return &fixture{
		ledger:     ledger,
		discounts:  discounts,
		repo:       repo,
		create:     commands.NewCreateOrderCommandHandler(repo, ledger, discounts, noopEventBus{}),
		transition: commands.NewTransitionOrderCommandHandler(repo, noopEventBus{}),
	}
}

func (f *fixture) stock(t *testing.T, unit inventory.Unit) int {
	t.Helper()
	info, err := f.ledger.ResolveUnit(context.Background(), unit)
	if err != nil {
		t.Fatalf("resolve %v: %v", unit, err)
	}
	return info.QuantityAvailable
}

func TestCreateOrderDrainsStockExactly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	unit := inventory.Unit{ProductID: "p1"}
	if err := f.ledger.UpsertUnit(ctx, unit, "Mug", 899, 5); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	_, err := f.create.Handle(ctx, commands.CreateOrderCommand{
		CustomerEmail: "ada@example.com",
		Items:         []commands.LineItemRequest{{ProductID: "p1", Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("first order: %v", err)
	}
	if got := f.stock(t, unit); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}

	_, err = f.create.Handle(ctx, commands.CreateOrderCommand{
		CustomerEmail: "bob@example.com",
		Items:         []commands.LineItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := f.stock(t, unit); got != 0 {
		t.Errorf("failed order must leave stock at 0, got %d", got)
	}
}

func TestCreateOrderRollsBackPartialReservations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1 := inventory.Unit{ProductID: "p1"}
	u2 := inventory.Unit{ProductID: "p2"}
	_ = f.ledger.UpsertUnit(ctx, u1, "Mug", 899, 10)
	_ = f.ledger.UpsertUnit(ctx, u2, "Cap", 1499, 1)

	_, err := f.create.Handle(ctx, commands.CreateOrderCommand{
		CustomerEmail: "ada@example.com",
		Items: []commands.LineItemRequest{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 2},
		},
	})
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if got := f.stock(t, u1); got != 10 {
		t.Errorf("first line reservation must be rolled back, got %d", got)
	}
	if got := f.stock(t, u2); got != 1 {
		t.Errorf("second unit must be untouched, got %d", got)
	}
}

func TestCancelReleasesStockExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	unit := inventory.Unit{ProductID: "p1", VariantID: "v1"}
	_ = f.ledger.UpsertUnit(ctx, unit, "T-Shirt / M", 1999, 10)

	order, err := f.create.Handle(ctx, commands.CreateOrderCommand{
		CustomerEmail: "ada@example.com",
		Items:         []commands.LineItemRequest{{ProductID: "p1", VariantID: "v1", Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := f.stock(t, unit); got != 6 {
		t.Fatalf("expected stock 6 after creation, got %d", got)
	}

	cancelled, err := f.transition.Handle(ctx, commands.TransitionOrderCommand{
		OrderID: order.ID, TargetStatus: "cancelled",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
	if got := f.stock(t, unit); got != 10 {
		t.Fatalf("expected stock restored to 10, got %d", got)
	}

	// Second cancellation is a no-op and must not release stock again.
	again, err := f.transition.Handle(ctx, commands.TransitionOrderCommand{
		OrderID: order.ID, TargetStatus: "cancelled",
	})
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", again.Status)
	}
	if got := f.stock(t, unit); got != 10 {
		t.Errorf("double cancel must not double-release, got %d", got)
	}
}

func TestSingleUseDiscountHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	unit := inventory.Unit{ProductID: "p1"}
	_ = f.ledger.UpsertUnit(ctx, unit, "Mug", 10000, 10)

	maxUses := 1
	if err := f.discounts.Create(ctx, discountdomain.Discount{
		ID: "d1", Code: "ONCE", Type: discountdomain.TypePercentage, Value: 10,
		IsActive: true, MaxUses: &maxUses,
	}); err != nil {
		t.Fatalf("create discount: %v", err)
	}

	first, err := f.create.Handle(ctx, commands.CreateOrderCommand{
		CustomerEmail: "ada@example.com",
		Items:         []commands.LineItemRequest{{ProductID: "p1", Quantity: 1}},
		DiscountCode:  "ONCE",
	})
	if err != nil {
		t.Fatalf("first use: %v", err)
	}
	if first.TotalCents != 9000 {
		t.Errorf("expected total 9000, got %d", first.TotalCents)
	}

	_, err = f.create.Handle(ctx, commands.CreateOrderCommand{
		CustomerEmail: "bob@example.com",
		Items:         []commands.LineItemRequest{{ProductID: "p1", Quantity: 1}},
		DiscountCode:  "ONCE",
	})
	if !errors.Is(err, discountdomain.ErrExhausted) {
		t.Fatalf("expected ErrExhausted on second use, got %v", err)
	}
}

func TestDiscountUseNotRefundedOnCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	unit := inventory.Unit{ProductID: "p1"}
	_ = f.ledger.UpsertUnit(ctx, unit, "Mug", 10000, 10)

	maxUses := 1
	_ = f.discounts.Create(ctx, discountdomain.Discount{
		ID: "d1", Code: "ONCE", Type: discountdomain.TypePercentage, Value: 10,
		IsActive: true, MaxUses: &maxUses,
	})

	order, err := f.create.Handle(ctx, commands.CreateOrderCommand{
		CustomerEmail: "ada@example.com",
		Items:         []commands.LineItemRequest{{ProductID: "p1", Quantity: 1}},
		DiscountCode:  "ONCE",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.transition.Handle(ctx, commands.TransitionOrderCommand{
		OrderID: order.ID, TargetStatus: "cancelled",
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err = f.create.Handle(ctx, commands.CreateOrderCommand{
		CustomerEmail: "bob@example.com",
		Items:         []commands.LineItemRequest{{ProductID: "p1", Quantity: 1}},
		DiscountCode:  "ONCE",
	})
	if !errors.Is(err, discountdomain.ErrExhausted) {
		t.Fatalf("expected ErrExhausted after cancellation, got %v", err)
	}
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_ = f.ledger.UpsertUnit(ctx, inventory.Unit{ProductID: "p1"}, "Mug", 899, 100)

	for i := 0; i < 3; i++ {
		if _, err := f.create.Handle(ctx, commands.CreateOrderCommand{
			CustomerEmail: "ada@example.com",
			Items:         []commands.LineItemRequest{{ProductID: "p1", Quantity: 1}},
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	pending := domain.StatusPending
	orders, err := f.repo.List(ctx, ports.ListFilter{Status: &pending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 3 {
		t.Errorf("expected 3 pending orders, got %d", len(orders))
	}

	cancelled := domain.StatusCancelled
	orders, err = f.repo.List(ctx, ports.ListFilter{Status: &cancelled})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("expected no cancelled orders, got %d", len(orders))
	}
}
