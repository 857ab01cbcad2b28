package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/pagination"
)

// ParseQueryInt reads ?key=, falling back to def, and rejects values outside
// [lo, hi].
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, pkgerrors.Validation("invalid query parameter", pkgerrors.FieldErrors{key: "must be a whole number"})
	case n < lo || n > hi:
		return 0, pkgerrors.Validation("invalid query parameter", pkgerrors.FieldErrors{key: "must be between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi)})
	}
	return n, nil
}

// ParsePage reads ?limit= and ?cursor=. Malformed cursors are rejected here
// so services never see them.
func ParsePage(r *http.Request) (pagination.Params, error) {
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))
	if _, err := pagination.ParseCursor(cursor); err != nil {
		return pagination.Params{}, pkgerrors.Validation("invalid query parameter", pkgerrors.FieldErrors{"cursor": "is invalid"})
	}
	return pagination.Params{Limit: limit, Cursor: cursor}, nil
}
