package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
)

type itemLookup interface {
	GetItem(ctx context.Context, id int64) (*models.CatalogItem, error)
}

// Summary is the client-facing view of a cart.
type Summary struct {
	CartID string     `json:"cart_id"`
	Lines  []LineView `json:"lines"`
	Total  int64      `json:"total"`
	Count  int        `json:"count"`
}

// LineView is a cart line with its computed total.
type LineView struct {
	Item      Snapshot `json:"item"`
	Qty       int      `json:"qty"`
	LineTotal int64    `json:"line_total"`
}

// Service manages shopper carts.
type Service interface {
	Get(ctx context.Context, cartID string) (*Cart, error)
	Add(ctx context.Context, cartID string, itemID int64, qty int) (*Cart, error)
	Remove(ctx context.Context, cartID string, itemID int64) (*Cart, error)
	Clear(ctx context.Context, cartID string) error
	Summary(ctx context.Context, cartID string) (Summary, error)
}

type service struct {
	store   Store
	catalog itemLookup
}

// NewService builds a cart service.
func NewService(store Store, catalog itemLookup) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	return &service{store: store, catalog: catalog}, nil
}

func (s *service) Get(ctx context.Context, cartID string) (*Cart, error) {
	if !ValidCartID(cartID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart id")
	}
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

// Add snapshots the catalog item server-side so clients cannot choose prices.
func (s *service) Add(ctx context.Context, cartID string, itemID int64, qty int) (*Cart, error) {
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := c.AddItem(SnapshotOf(*item), qty); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, cartID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

func (s *service) Remove(ctx context.Context, cartID string, itemID int64) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.RemoveItem(itemID)
	if err := s.store.Save(ctx, cartID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

func (s *service) Clear(ctx context.Context, cartID string) error {
	if !ValidCartID(cartID) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart id")
	}
	if err := s.store.Delete(ctx, cartID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) Summary(ctx context.Context, cartID string) (Summary, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(cartID, c), nil
}

// Summarize renders c for clients.
func Summarize(cartID string, c *Cart) Summary {
	lines := c.Lines()
	views := make([]LineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, LineView{Item: line.Item, Qty: line.Qty, LineTotal: line.Total()})
	}
	return Summary{CartID: cartID, Lines: views, Total: c.Total(), Count: c.Count()}
}
