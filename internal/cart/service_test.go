package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dejobratic/storefront/internal/cart"
	cartmemory "github.com/dejobratic/storefront/internal/cart/memory"
	"github.com/dejobratic/storefront/internal/inventory"
	invmemory "github.com/dejobratic/storefront/internal/inventory/memory"
)

func newService(t *testing.T) (*cart.Service, *invmemory.Ledger) {
	t.Helper()
	ledger := invmemory.NewLedger()
	return cart.NewService(cartmemory.NewStore(), ledger), ledger
}

func seed(t *testing.T, ledger *invmemory.Ledger, productID string, price int64, qty int) {
	t.Helper()
	unit := inventory.Unit{ProductID: productID}
	if err := ledger.UpsertUnit(context.Background(), unit, "Item "+productID, price, qty); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestServiceAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots catalog data onto the line", func(t *testing.T) {
		svc, ledger := newService(t)
		seed(t, ledger, "p1", 2500, 8)

		c, err := svc.AddItem(ctx, "s1", cart.AddItemInput{ProductID: "p1", Quantity: 2})
		if err != nil {
			t.Fatalf("add: %v", err)
		}

		line := c.Lines[0]
		if line.Name != "Item p1" || line.UnitPriceCents != 2500 || line.MaxQuantity != 8 {
			t.Errorf("unexpected snapshot %+v", line)
		}
	})

	t.Run("clamps to available stock across additions", func(t *testing.T) {
		svc, ledger := newService(t)
		seed(t, ledger, "p1", 2500, 3)

		if _, err := svc.AddItem(ctx, "s1", cart.AddItemInput{ProductID: "p1", Quantity: 2}); err != nil {
			t.Fatalf("add: %v", err)
		}
		c, err := svc.AddItem(ctx, "s1", cart.AddItemInput{ProductID: "p1", Quantity: 2})
		if err != nil {
			t.Fatalf("add: %v", err)
		}

		if c.Lines[0].Quantity != 3 {
			t.Errorf("expected quantity clamped to 3, got %d", c.Lines[0].Quantity)
		}
	})

	t.Run("rejects unknown units", func(t *testing.T) {
		svc, _ := newService(t)
		if _, err := svc.AddItem(ctx, "s1", cart.AddItemInput{ProductID: "ghost", Quantity: 1}); !errors.Is(err, inventory.ErrUnitNotFound) {
			t.Errorf("expected ErrUnitNotFound, got %v", err)
		}
	})
}

func TestServiceSetItemQuantity(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newService(t)
	seed(t, ledger, "p1", 2500, 10)

	if _, err := svc.AddItem(ctx, "s1", cart.AddItemInput{ProductID: "p1", Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}

	c, err := svc.SetItemQuantity(ctx, "s1", "p1", "", "", 5)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if c.Lines[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", c.Lines[0].Quantity)
	}

	c, err = svc.SetItemQuantity(ctx, "s1", "p1", "", "", 0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !c.IsEmpty() {
		t.Error("expected empty cart")
	}

	// The empty cart is dropped from the store; a fresh Get returns a new one.
	fresh, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !fresh.IsEmpty() {
		t.Error("expected deleted cart to read back empty")
	}
}
