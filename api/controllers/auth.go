package controllers

import (
	"net/http"

	"github.com/angelmondragon/its27-backend/api/middleware"
	"github.com/angelmondragon/its27-backend/api/validators"
	"github.com/angelmondragon/its27-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// accessTokenHeader mirrors the new access token for clients that read
// headers instead of the body.
const accessTokenHeader = "X-ITS27-Token"

var errSessionMissing = pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing")

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth")
	}
	return endpointFunc(logg, http.StatusOK, func(w http.ResponseWriter, r *http.Request) (any, error) {
		var req auth.SignInRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		res, err := svc.SignIn(r.Context(), req)
		if err != nil {
			return nil, err
		}
		w.Header().Set(accessTokenHeader, res.AccessToken)
		return res, nil
	})
}

// AuthRefresh trades the refresh token for a new pair. The old refresh token
// stops working.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth")
	}
	return endpointFunc(logg, http.StatusOK, func(w http.ResponseWriter, r *http.Request) (any, error) {
		var req auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		res, err := svc.Refresh(r.Context(), req)
		if err != nil {
			return nil, err
		}
		w.Header().Set(accessTokenHeader, res.AccessToken)
		return res, nil
	})
}

func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth")
	}
	return endpointFunc(logg, http.StatusNoContent, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			return nil, errSessionMissing
		}
		return nil, svc.SignOut(r.Context(), accessID)
	})
}

func AuthSession(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			return nil, errSessionMissing
		}
		return svc.GetSession(r.Context(), accessID)
	})
}

// AuthRegister creates an admin account. The router only mounts it when
// admin setup is allowed.
func AuthRegister(svc auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "register")
	}
	return endpointFunc(logg, http.StatusCreated, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		var req auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.Register(r.Context(), req)
	})
}
