package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/its27-backend/api/validators"
	internalorders "github.com/angelmondragon/its27-backend/internal/orders"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrdersList pages orders newest first. ?status= filters by state and
// ?q= matches the order code or customer name.
func AdminOrdersList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "orders")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		page, err := validators.ParsePage(r)
		if err != nil {
			return nil, err
		}
		filters := internalorders.ListFilters{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				return nil, pkgerrors.Validation("invalid status filter", pkgerrors.FieldErrors{
					"status": "must be pending, shipped, delivered or cancelled",
				})
			}
			filters.Status = &status
		}
		return svc.List(r.Context(), filters, page)
	})
}

func AdminOrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "orders")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		return svc.Get(r.Context(), id)
	})
}

func AdminOrderUpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "orders")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.UpdateStatus(r.Context(), id, req.Status)
	})
}

// AdminOrderDelete needs ?confirm=true.
func AdminOrderDelete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "orders")
	}
	return endpointFunc(logg, http.StatusNoContent, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		confirmed, err := validators.ParseQueryBool(r, "confirm")
		if err != nil {
			return nil, err
		}
		return nil, svc.Delete(r.Context(), id, confirmed)
	})
}
