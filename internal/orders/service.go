package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/pagination"
)

// Service exposes the admin order workflows.
type Service interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error)
	Get(ctx context.Context, id int64) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*OrderDTO, error)
	Delete(ctx context.Context, id int64, confirmed bool) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the orders service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not list orders")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id int64) (*OrderDTO, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, raw string) (*OrderDTO, error) {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Validation("invalid order status", pkgerrors.FieldErrors{"status": "must be pending, shipped, delivered or cancelled"})
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, mapRepoError(err, id)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"order_id": id, "status": status}), "orders.status_updated")
	return s.Get(ctx, id)
}

// Delete removes an order. The caller must pass confirmed=true.
func (s *service) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return pkgerrors.New(pkgerrors.CodeValidation, "deleting an order requires confirmation")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, id)
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", id), "orders.deleted")
	return nil
}

func mapRepoError(err error, id int64) error {
	if errors.Is(err, ErrOrderNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", id))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order store unavailable")
}
