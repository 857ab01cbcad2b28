package models

import (
	"fmt"
	"time"

	dbtypes "github.com/angelmondragon/its27-backend/pkg/db/types"
)

// PlaceholderImageURL renders the stock photo used for items without uploads.
const PlaceholderImageURL = "https://picsum.photos/800/1000?random=%d"

// CatalogItem is a purchasable jewelry piece.
type CatalogItem struct {
	ID          int64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string             `gorm:"column:name;not null" json:"name"`
	Category    string             `gorm:"column:category;not null;index" json:"category"`
	Price       int64              `gorm:"column:price;not null" json:"price"`
	ImageID     int                `gorm:"column:image_id;not null;default:0" json:"image_id"`
	Images      dbtypes.StringList `gorm:"column:images;not null" json:"images"`
	Description *string            `gorm:"column:description" json:"description,omitempty"`
	IsFeatured  bool               `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CatalogItem) TableName() string { return "catalog_items" }

// MainImage returns the first uploaded image or the legacy placeholder.
func (c CatalogItem) MainImage() string {
	if len(c.Images) > 0 && c.Images[0] != "" {
		return c.Images[0]
	}
	return fmt.Sprintf(PlaceholderImageURL, c.ImageID)
}
