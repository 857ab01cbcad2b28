package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/its27-backend/api/validators"
	"github.com/angelmondragon/its27-backend/internal/messages"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// ContactCreate stores a message from the public contact form.
func ContactCreate(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "messages")
	}
	return endpointFunc(logg, http.StatusCreated, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		var in messages.CreateInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			return nil, err
		}
		return svc.Create(r.Context(), in)
	})
}

func AdminMessagesList(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "messages")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		page, err := validators.ParsePage(r)
		if err != nil {
			return nil, err
		}
		return svc.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")), page)
	})
}

func AdminMessageRead(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "messages")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		return svc.MarkRead(r.Context(), id)
	})
}

func AdminMessageDelete(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "messages")
	}
	return endpointFunc(logg, http.StatusNoContent, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		return nil, svc.Delete(r.Context(), id)
	})
}
