package cart

import (
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
)

// Snapshot is the copy of a catalog item captured when it is added to a cart.
type Snapshot struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
}

// SnapshotOf captures the fields of item a cart line needs.
func SnapshotOf(item models.CatalogItem) Snapshot {
	return Snapshot{
		ID:       item.ID,
		Name:     item.Name,
		Category: item.Category,
		Price:    item.Price,
		Image:    item.MainImage(),
	}
}

// Line is one distinct item in the cart.
type Line struct {
	Item Snapshot `json:"item"`
	Qty  int      `json:"qty"`
}

// Total is the line price times its quantity.
func (l Line) Total() int64 {
	return l.Item.Price * int64(l.Qty)
}

// Cart holds at most one line per item id in insertion order.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem appends item with qty or increments the quantity of its existing line.
func (c *Cart) AddItem(item Snapshot, qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if item.ID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id must be positive")
	}
	if item.Price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d has a negative price", item.ID))
	}
	for i := range c.lines {
		if c.lines[i].Item.ID == item.ID {
			c.lines[i].Qty += qty
			return nil
		}
	}
	c.lines = append(c.lines, Line{Item: item, Qty: qty})
	return nil
}

// RemoveItem drops the line for id. Unknown ids are ignored.
func (c *Cart) RemoveItem(id int64) {
	for i := range c.lines {
		if c.lines[i].Item.ID == id {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// LineTotal returns price times quantity for line.
func (c *Cart) LineTotal(line Line) int64 {
	return line.Total()
}

// Total sums every line total.
func (c *Cart) Total() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.Total()
	}
	return total
}

// Count sums every line quantity.
func (c *Cart) Count() int {
	count := 0
	for _, line := range c.lines {
		count += line.Qty
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

type cartJSON struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(cartJSON{Lines: lines})
}

// UnmarshalJSON rebuilds the cart through AddItem so a stored payload cannot
// break the one-line-per-item rule.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw cartJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.lines = nil
	for _, line := range raw.Lines {
		if err := c.AddItem(line.Item, line.Qty); err != nil {
			return fmt.Errorf("decode cart line %d: %w", line.Item.ID, err)
		}
	}
	return nil
}
