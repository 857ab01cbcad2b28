package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/its27-backend/api/responses"
	"github.com/angelmondragon/its27-backend/internal/media"
	"github.com/angelmondragon/its27-backend/internal/settings"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

const (
	maxSettingBytes = 64 << 10
	sseHeartbeat    = 25 * time.Second
	sseEventName    = "setting"
)

type logoUploader interface {
	Upload(ctx context.Context, file media.File) (*settings.Setting, error)
}

// SettingsGet returns a site setting, or its default when none was saved.
func SettingsGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "settings")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		return svc.Get(r.Context(), chi.URLParam(r, "key"))
	})
}

// SettingsEvents streams a setting as server-sent events: the current value
// first, then every change until the client disconnects.
func SettingsEvents(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "settings")
	}
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		current, err := svc.Get(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updates := make(latestSetting, 1)
		cancel := svc.Subscribe(current.Key, updates.offer)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if err := writeSettingEvent(w, *current); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(sseHeartbeat)
		defer ticker.Stop()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-updates:
				if err := writeSettingEvent(w, s); err != nil {
					if logg != nil {
						logg.Warn(logg.WithField(ctx, "error", err.Error()), "settings.stream_write_failed")
					}
					return
				}
				flusher.Flush()
			case <-ticker.C:
				if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// latestSetting holds at most one pending value for a stream. A slow reader
// skips intermediate changes but always receives the newest one.
type latestSetting chan settings.Setting

func (l latestSetting) offer(s settings.Setting) {
	for {
		select {
		case l <- s:
			return
		default:
		}
		select {
		case <-l:
		default:
		}
	}
}

func writeSettingEvent(w io.Writer, s settings.Setting) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", sseEventName, payload)
	return err
}

// AdminSettingsPut stores the raw JSON body as the setting value.
func AdminSettingsPut(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "settings")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxSettingBytes+1))
		switch {
		case err != nil:
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
		case len(raw) > maxSettingBytes:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting too large")
		case !json.Valid(raw):
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "body must be valid JSON")
		}
		return svc.Put(r.Context(), chi.URLParam(r, "key"), json.RawMessage(raw))
	})
}

// AdminLogoUpload stores the multipart "file" as the site logo.
func AdminLogoUpload(uploader logoUploader, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	if uploader == nil {
		return unavailable(logg, "logo upload")
	}
	return endpointFunc(logg, http.StatusCreated, func(w http.ResponseWriter, r *http.Request) (any, error) {
		files, cleanup, err := readUploads(w, r, "file", 1, maxBytes)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		if len(files) != 1 {
			return nil, pkgerrors.Validation("exactly one logo file expected", pkgerrors.FieldErrors{"file": "must be a single file"})
		}
		return uploader.Upload(r.Context(), files[0])
	})
}
