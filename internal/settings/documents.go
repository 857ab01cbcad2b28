package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/angelmondragon/its27-backend/internal/catalog"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
)

// Hero is the landing page banner.
type Hero struct {
	Eyebrow  string `json:"eyebrow,omitempty"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"image_url"`
}

// Logo is the brand mark shown in the navigation bar. An empty URL renders
// the text wordmark.
type Logo struct {
	URL string `json:"url"`
}

// Categories is the ordered list of shop categories shown in navigation.
type Categories []string

var defaultHero = Hero{
	Eyebrow:  "New Collection",
	Title:    "Timeless Elegance",
	Subtitle: "Discover the beauty of handcrafted simplicity. Designed for the modern muse.",
	ImageURL: "https://picsum.photos/1920/1080?grayscale&blur=2",
}

// Default returns the document served before an admin saves key.
func Default(key enums.SettingKey) json.RawMessage {
	var v any
	switch key {
	case enums.SettingHero:
		v = defaultHero
	case enums.SettingLogo:
		v = Logo{}
	case enums.SettingCategories:
		v = Categories(catalog.SeedCategories())
	default:
		return json.RawMessage("null")
	}
	raw, _ := json.Marshal(v)
	return raw
}

// Normalize validates raw against the document shape of key and returns its
// canonical JSON encoding.
func Normalize(key enums.SettingKey, raw json.RawMessage) (json.RawMessage, error) {
	switch key {
	case enums.SettingHero:
		var hero Hero
		if err := decodeStrict(raw, &hero); err != nil {
			return nil, err
		}
		hero.Eyebrow = strings.TrimSpace(hero.Eyebrow)
		hero.Title = strings.TrimSpace(hero.Title)
		hero.Subtitle = strings.TrimSpace(hero.Subtitle)
		hero.ImageURL = strings.TrimSpace(hero.ImageURL)
		fields := pkgerrors.FieldErrors{}
		if hero.Title == "" {
			fields["title"] = "is required"
		}
		if hero.ImageURL != "" && !validURL(hero.ImageURL) {
			fields["image_url"] = "must be an absolute http(s) url"
		}
		if len(fields) > 0 {
			return nil, pkgerrors.Validation("invalid hero settings", fields)
		}
		return json.Marshal(hero)
	case enums.SettingLogo:
		var logo Logo
		if err := decodeStrict(raw, &logo); err != nil {
			return nil, err
		}
		logo.URL = strings.TrimSpace(logo.URL)
		if logo.URL != "" && !validURL(logo.URL) {
			return nil, pkgerrors.Validation("invalid logo settings", pkgerrors.FieldErrors{"url": "must be an absolute http(s) url"})
		}
		return json.Marshal(logo)
	case enums.SettingCategories:
		var list Categories
		if err := decodeStrict(raw, &list); err != nil {
			return nil, err
		}
		seen := map[string]bool{}
		out := Categories{}
		for _, c := range list {
			c = strings.TrimSpace(c)
			if c == "" || seen[strings.ToLower(c)] {
				continue
			}
			if strings.EqualFold(c, catalog.AllCategories) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is reserved", catalog.AllCategories))
			}
			seen[strings.ToLower(c)] = true
			out = append(out, c)
		}
		return json.Marshal(out)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown setting %q", key))
}

func decodeStrict(raw json.RawMessage, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid setting document").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
