package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// Result is the outcome of a catalog read. When Fallback is set, Items holds
// the bundled sample catalog and Err describes why the store was not used
// (nil when the store simply had no rows).
type Result struct {
	Items    []models.CatalogItem
	Fallback bool
	Err      error
}

// Service exposes read access to the catalog for shoppers.
type Service interface {
	ListItems(ctx context.Context) Result
	Browse(ctx context.Context, f Filter) Result
	GetItem(ctx context.Context, id int64) (*models.CatalogItem, error)
}

type itemStore interface {
	List(ctx context.Context) ([]models.CatalogItem, error)
	Get(ctx context.Context, id int64) (*models.CatalogItem, error)
}

type service struct {
	store itemStore
	logg  *logger.Logger
}

// NewService constructs the catalog read service.
func NewService(store itemStore, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, logg: logg}, nil
}

func (s *service) ListItems(ctx context.Context) Result {
	items, err := s.store.List(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.list_failed_using_seed")
		return Result{Items: Seed(), Fallback: true, Err: err}
	}
	if len(items) == 0 {
		s.logg.Info(ctx, "catalog.empty_using_seed")
		return Result{Items: Seed(), Fallback: true}
	}
	return Result{Items: items}
}

func (s *service) Browse(ctx context.Context, f Filter) Result {
	res := s.ListItems(ctx)
	res.Items = Apply(res.Items, f)
	return res
}

func (s *service) GetItem(ctx context.Context, id int64) (*models.CatalogItem, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id must be positive")
	}
	item, err := s.store.Get(ctx, id)
	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, ErrItemNotFound):
		// the listing shows the sample catalog while the store is empty
		if seeded, ok := seedItem(id); ok && s.storeEmpty(ctx) {
			return &seeded, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found", id))
	}

	// seed prices must never stand in for a real item, carts snapshot them
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"item_id": id, "error": err.Error()}), "catalog.get_failed")
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
}

func (s *service) storeEmpty(ctx context.Context) bool {
	items, err := s.store.List(ctx)
	return err == nil && len(items) == 0
}
