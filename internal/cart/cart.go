// Package cart consolidates add-to-cart requests into a deduplicated list of
// line items suitable for order creation. Merging happens on the raw
// (product, size, color) attributes; variant resolution is left to the
// catalog at order time.
package cart

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no cart exists for the given ID.
var ErrNotFound = errors.New("cart not found")

// Line is a single consolidated cart entry.
type Line struct {
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id,omitempty"`
	Size           string `json:"size,omitempty"`
	Color          string `json:"color,omitempty"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	// MaxQuantity is the per-line stock ceiling known at the time the line
	// was last touched. Zero means no ceiling is known.
	MaxQuantity int `json:"max_quantity,omitempty"`
}

func (l Line) sameUnit(other Line) bool {
	return l.ProductID == other.ProductID && l.Size == other.Size && l.Color == other.Color
}

// Cart holds the consolidated lines for one shopping session. Lines keep
// first-seen order.
type Cart struct {
	ID        string    `json:"id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart with the given session ID.
func New(id string) *Cart {
	return &Cart{ID: id}
}

// Add merges the addition into an existing line when (product, size, color)
// match exactly, summing quantities; otherwise it appends a new line. The
// resulting quantity is clamped to the line's stock ceiling.
func (c *Cart) Add(line Line) {
	for i := range c.Lines {
		if c.Lines[i].sameUnit(line) {
			c.Lines[i].Quantity += line.Quantity
			c.Lines[i].Name = line.Name
			c.Lines[i].VariantID = line.VariantID
			c.Lines[i].UnitPriceCents = line.UnitPriceCents
			c.Lines[i].MaxQuantity = line.MaxQuantity
			c.clampAt(i)
			return
		}
	}

	c.Lines = append(c.Lines, line)
	c.clampAt(len(c.Lines) - 1)
}

// SetQuantity replaces the quantity of the matching line. A quantity of zero
// or less removes the line; anything else is clamped to [1, ceiling].
// Returns false when no line matches.
func (c *Cart) SetQuantity(productID, size, color string, quantity int) bool {
	key := Line{ProductID: productID, Size: size, Color: color}
	for i := range c.Lines {
		if !c.Lines[i].sameUnit(key) {
			continue
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
		c.Lines[i].Quantity = quantity
		c.clampAt(i)
		return true
	}
	return false
}

// Remove deletes the matching line. Returns false when no line matches.
func (c *Cart) Remove(productID, size, color string) bool {
	return c.SetQuantity(productID, size, color, 0)
}

// clampAt bounds the line's quantity to [1, ceiling]. Add and SetQuantity
// guarantee the quantity is positive before clamping.
func (c *Cart) clampAt(i int) {
	line := &c.Lines[i]
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.MaxQuantity > 0 && line.Quantity > line.MaxQuantity {
		line.Quantity = line.MaxQuantity
	}
}

// SubtotalCents sums the price of all lines.
func (c *Cart) SubtotalCents() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.UnitPriceCents * int64(line.Quantity)
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
