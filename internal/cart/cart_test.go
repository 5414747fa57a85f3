package cart

import "testing"

func TestAdd(t *testing.T) {
	t.Run("merges additions with matching product size and color", func(t *testing.T) {
		c := New("s1")
		c.Add(Line{ProductID: "p1", Size: "M", Color: "red", UnitPriceCents: 1000, Quantity: 1, MaxQuantity: 10})
		c.Add(Line{ProductID: "p1", Size: "M", Color: "red", UnitPriceCents: 1000, Quantity: 2, MaxQuantity: 10})

		if len(c.Lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(c.Lines))
		}
		if c.Lines[0].Quantity != 3 {
			t.Errorf("expected quantity 3, got %d", c.Lines[0].Quantity)
		}
	})

	t.Run("different size or color makes a new line", func(t *testing.T) {
		c := New("s1")
		c.Add(Line{ProductID: "p1", Size: "M", Color: "red", Quantity: 1})
		c.Add(Line{ProductID: "p1", Size: "L", Color: "red", Quantity: 1})
		c.Add(Line{ProductID: "p1", Size: "M", Color: "blue", Quantity: 1})

		if len(c.Lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(c.Lines))
		}
	})

	t.Run("preserves first-seen order", func(t *testing.T) {
		c := New("s1")
		c.Add(Line{ProductID: "p2", Quantity: 1})
		c.Add(Line{ProductID: "p1", Quantity: 1})
		c.Add(Line{ProductID: "p2", Quantity: 1})

		if c.Lines[0].ProductID != "p2" || c.Lines[1].ProductID != "p1" {
			t.Errorf("expected order [p2 p1], got [%s %s]", c.Lines[0].ProductID, c.Lines[1].ProductID)
		}
	})

	t.Run("clamps merged quantity to stock ceiling", func(t *testing.T) {
		c := New("s1")
		c.Add(Line{ProductID: "p1", Quantity: 4, MaxQuantity: 5})
		c.Add(Line{ProductID: "p1", Quantity: 4, MaxQuantity: 5})

		if c.Lines[0].Quantity != 5 {
			t.Errorf("expected quantity clamped to 5, got %d", c.Lines[0].Quantity)
		}
	})

	t.Run("no ceiling means no clamp", func(t *testing.T) {
		c := New("s1")
		c.Add(Line{ProductID: "p1", Quantity: 50})
		c.Add(Line{ProductID: "p1", Quantity: 50})

		if c.Lines[0].Quantity != 100 {
			t.Errorf("expected quantity 100, got %d", c.Lines[0].Quantity)
		}
	})

	t.Run("refreshes price snapshot on merge", func(t *testing.T) {
		c := New("s1")
		c.Add(Line{ProductID: "p1", UnitPriceCents: 1000, Quantity: 1})
		c.Add(Line{ProductID: "p1", UnitPriceCents: 1200, Quantity: 1})

		if c.Lines[0].UnitPriceCents != 1200 {
			t.Errorf("expected refreshed price 1200, got %d", c.Lines[0].UnitPriceCents)
		}
	})
}

func TestSetQuantity(t *testing.T) {
	t.Run("clamps to ceiling", func(t *testing.T) {
		c := New("s1")
		c.Add(Line{ProductID: "p1", Quantity: 1, MaxQuantity: 3})

		if !c.SetQuantity("p1", "", "", 10) {
			t.Fatal("expected line to match")
		}
		if c.Lines[0].Quantity != 3 {
			t.Errorf("expected quantity 3, got %d", c.Lines[0].Quantity)
		}
	})

	t.Run("zero or negative removes the line", func(t *testing.T) {
		for _, quantity := range []int{0, -1} {
			c := New("s1")
			c.Add(Line{ProductID: "p1", Quantity: 2})

			if !c.SetQuantity("p1", "", "", quantity) {
				t.Fatal("expected line to match")
			}
			if !c.IsEmpty() {
				t.Errorf("expected empty cart after setting quantity %d", quantity)
			}
		}
	})

	t.Run("unknown line reports no match", func(t *testing.T) {
		c := New("s1")
		if c.SetQuantity("ghost", "", "", 1) {
			t.Error("expected no match for unknown line")
		}
	})
}

func TestSubtotalCents(t *testing.T) {
	c := New("s1")
	c.Add(Line{ProductID: "p1", UnitPriceCents: 2500, Quantity: 2})
	c.Add(Line{ProductID: "p2", UnitPriceCents: 1000, Quantity: 1})

	if got := c.SubtotalCents(); got != 6000 {
		t.Errorf("expected subtotal 6000, got %d", got)
	}
}
