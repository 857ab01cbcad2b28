package product

import (
	"time"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
)

// ProductDTO is the admin view of a catalog item.
type ProductDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	ImageID     int       `json:"image_id"`
	Images      []string  `json:"images"`
	MainImage   string    `json:"main_image"`
	Description *string   `json:"description,omitempty"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FailedImage names an image that was not attached.
type FailedImage struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// AttachResult reports the product after an image upload and which files
// were skipped.
type AttachResult struct {
	Product ProductDTO    `json:"product"`
	Failed  []FailedImage `json:"failed"`
}

func NewProductDTO(item *models.CatalogItem) ProductDTO {
	images := []string{}
	if len(item.Images) > 0 {
		images = append(images, item.Images...)
	}
	return ProductDTO{
		ID:          item.ID,
		Name:        item.Name,
		Category:    item.Category,
		Price:       item.Price,
		ImageID:     item.ImageID,
		Images:      images,
		MainImage:   item.MainImage(),
		Description: item.Description,
		IsFeatured:  item.IsFeatured,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
