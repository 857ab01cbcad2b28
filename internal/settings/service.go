package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// Setting is a site configuration document.
type Setting struct {
	Key       enums.SettingKey `json:"key"`
	Value     json.RawMessage  `json:"value"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
	Default   bool             `json:"default"`
}

type store interface {
	Get(ctx context.Context, key string) (*models.SiteSetting, error)
	Upsert(ctx context.Context, setting *models.SiteSetting) error
}

// Service reads and writes site settings and lets callers observe changes.
type Service interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Put(ctx context.Context, key string, value json.RawMessage) (*Setting, error)
	// Subscribe registers fn for changes to key and returns the function that
	// removes it.
	Subscribe(key enums.SettingKey, fn Listener) (cancel func())
	// HandleChange re-reads key and notifies its subscribers.
	HandleChange(ctx context.Context, key enums.SettingKey)
}

type service struct {
	repo        store
	broadcaster Broadcaster
	hub         *hub
	logg        *logger.Logger
}

func NewService(repo store, broadcaster Broadcaster, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if broadcaster == nil {
		return nil, fmt.Errorf("settings broadcaster required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, broadcaster: broadcaster, hub: newHub(), logg: logg}, nil
}

func (s *service) Get(ctx context.Context, rawKey string) (*Setting, error) {
	key, err := parseKey(rawKey)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, key)
}

func (s *service) load(ctx context.Context, key enums.SettingKey) (*Setting, error) {
	row, err := s.repo.Get(ctx, key.String())
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return &Setting{Key: key, Value: Default(key), Default: true}, nil
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"key": key, "error": err.Error()}), "settings.load_failed_using_default")
		return &Setting{Key: key, Value: Default(key), Default: true}, nil
	}
	updated := row.UpdatedAt
	return &Setting{Key: key, Value: row.JSON(), UpdatedAt: &updated}, nil
}

// Put validates value against the document shape of key, saves it, and
// announces the change. A failed announcement does not fail the save.
func (s *service) Put(ctx context.Context, rawKey string, value json.RawMessage) (*Setting, error) {
	key, err := parseKey(rawKey)
	if err != nil {
		return nil, err
	}
	normalized, err := Normalize(key, value)
	if err != nil {
		return nil, err
	}
	row := &models.SiteSetting{Key: key.String(), Value: string(normalized)}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not save setting")
	}
	logCtx := s.logg.WithField(ctx, "key", key)
	s.logg.Info(logCtx, "settings.saved")

	if err := s.broadcaster.Publish(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "settings.broadcast_failed")
		s.HandleChange(ctx, key)
	}
	updated := row.UpdatedAt
	return &Setting{Key: key, Value: normalized, UpdatedAt: &updated}, nil
}

func (s *service) Subscribe(key enums.SettingKey, fn Listener) func() {
	return s.hub.subscribe(key, fn)
}

func (s *service) HandleChange(ctx context.Context, key enums.SettingKey) {
	setting, err := s.load(ctx, key)
	if err != nil {
		return
	}
	s.hub.notify(*setting)
}

func parseKey(raw string) (enums.SettingKey, error) {
	key, err := enums.ParseSettingKey(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown setting %q", raw))
	}
	return key, nil
}
