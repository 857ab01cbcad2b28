package media

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/its27-backend/internal/settings"
	"github.com/angelmondragon/its27-backend/pkg/enums"
)

type settingWriter interface {
	Put(ctx context.Context, key string, value json.RawMessage) (*settings.Setting, error)
}

// LogoUploader stores a brand logo and points the logo setting at it.
type LogoUploader struct {
	media    *Service
	settings settingWriter
	prefix   string
}

func NewLogoUploader(media *Service, settingsSvc settingWriter, prefix string) (*LogoUploader, error) {
	if media == nil {
		return nil, fmt.Errorf("media service required")
	}
	if settingsSvc == nil {
		return nil, fmt.Errorf("settings service required")
	}
	return &LogoUploader{media: media, settings: settingsSvc, prefix: prefix}, nil
}

func (u *LogoUploader) Upload(ctx context.Context, file File) (*settings.Setting, error) {
	url, err := u.media.Upload(ctx, u.prefix, file)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(settings.Logo{URL: url})
	if err != nil {
		return nil, err
	}
	return u.settings.Put(ctx, enums.SettingLogo.String(), raw)
}
