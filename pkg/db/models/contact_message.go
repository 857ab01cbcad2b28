package models

import (
	"time"

	"github.com/angelmondragon/its27-backend/pkg/enums"
)

type ContactMessage struct {
	ID        int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string              `gorm:"column:name;not null"`
	Email     string              `gorm:"column:email;not null"`
	Message   string              `gorm:"column:message;not null"`
	Status    enums.MessageStatus `gorm:"column:status;not null;default:new"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (ContactMessage) TableName() string { return "contact_messages" }
