package models

import (
	"encoding/json"
	"time"
)

// SiteSetting is a single keyed JSON document edited from the back-office.
// Value holds the raw JSON text.
type SiteSetting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SiteSetting) TableName() string { return "site_settings" }

// JSON exposes the stored document for embedding in responses.
func (s SiteSetting) JSON() json.RawMessage {
	if s.Value == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(s.Value)
}
