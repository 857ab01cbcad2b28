package enums

import "fmt"

// SettingKey names a site configuration record.
type SettingKey string

const (
	SettingHero       SettingKey = "hero"
	SettingLogo       SettingKey = "logo"
	SettingCategories SettingKey = "categories"
)

var validSettingKeys = []SettingKey{
	SettingHero,
	SettingLogo,
	SettingCategories,
}

func (k SettingKey) String() string {
	return string(k)
}

func (k SettingKey) IsValid() bool {
	for _, candidate := range validSettingKeys {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParseSettingKey(value string) (SettingKey, error) {
	for _, candidate := range validSettingKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid setting key %q", value)
}
