package controllers

import (
	"net/http"

	"github.com/angelmondragon/its27-backend/api/responses"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// endpoint returns the payload instead of writing it; endpointFunc turns it
// into a handler that writes the envelope.
type endpoint func(w http.ResponseWriter, r *http.Request) (any, error)

func endpointFunc(logg *logger.Logger, status int, fn endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fn(w, r)
		switch {
		case err != nil:
			responses.WriteError(r.Context(), logg, w, err)
		case status == http.StatusNoContent:
			w.WriteHeader(status)
		default:
			responses.WriteSuccessStatus(w, status, data)
		}
	}
}

// unavailable answers every request when a handler was built without its
// service.
func unavailable(logg *logger.Logger, service string) http.HandlerFunc {
	err := pkgerrors.New(pkgerrors.CodeInternal, service+" service unavailable")
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, err)
	}
}
