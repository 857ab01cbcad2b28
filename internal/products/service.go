package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/its27-backend/internal/catalog"
	"github.com/angelmondragon/its27-backend/internal/media"
	"github.com/angelmondragon/its27-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/its27-backend/pkg/db/types"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

const (
	maxNameLength        = 120
	maxCategoryLength    = 60
	maxDescriptionLength = 2000
)

// Service manages catalog items from the admin panel.
type Service interface {
	Get(ctx context.Context, id int64) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id int64, confirmed bool) error
	AttachImages(ctx context.Context, id int64, files []media.File) (*AttachResult, error)
	ReorderImages(ctx context.Context, id int64, urls []string) (*ProductDTO, error)
	PromoteImage(ctx context.Context, id int64, index int) (*ProductDTO, error)
	RemoveImage(ctx context.Context, id int64, index int) (*ProductDTO, error)
}

// CreateProductInput holds the payload to create a product.
type CreateProductInput struct {
	Name        string
	Category    string
	Price       int64
	ImageID     int
	Description *string
	IsFeatured  bool
}

// UpdateProductInput holds optional mutation values for a product. Nil
// fields are left untouched.
type UpdateProductInput struct {
	Name        *string
	Category    *string
	Price       *int64
	ImageID     *int
	Description *string
	IsFeatured  *bool
}

type itemRepository interface {
	Get(ctx context.Context, id int64) (*models.CatalogItem, error)
	Create(ctx context.Context, item *models.CatalogItem) error
	Save(ctx context.Context, item *models.CatalogItem) error
	Delete(ctx context.Context, id int64) error
}

type imageStore interface {
	UploadBatch(ctx context.Context, prefix string, files []media.File) (media.BatchResult, error)
	Remove(ctx context.Context, publicURL string) error
}

type service struct {
	repo   itemRepository
	images imageStore
	prefix string
	logg   *logger.Logger
}

// NewService wires the admin product service. prefix is the object storage
// folder product images are written to.
func NewService(repo itemRepository, images imageStore, prefix string, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if images == nil {
		return nil, fmt.Errorf("image store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, images: images, prefix: prefix, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*ProductDTO, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(item)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	item := &models.CatalogItem{
		Name:        strings.TrimSpace(input.Name),
		Category:    strings.TrimSpace(input.Category),
		Price:       input.Price,
		ImageID:     input.ImageID,
		Images:      dbtypes.StringList{},
		Description: trimmedOrNil(input.Description),
		IsFeatured:  input.IsFeatured,
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", item.ID), "products.created")
	dto := NewProductDTO(item)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(item, input)
	if err := validateItem(item); err != nil {
		return nil, err
	}
	return s.save(ctx, item)
}

func (s *service) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return pkgerrors.New(pkgerrors.CodeValidation, "delete requires confirm=true")
	}
	item, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete product")
	}
	for _, url := range item.Images {
		s.removeObject(ctx, id, url)
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", id), "products.deleted")
	return nil
}

// AttachImages uploads files and appends the stored ones to the product's
// gallery. Files that fail are reported and skipped.
func (s *service) AttachImages(ctx context.Context, id int64, files []media.File) (*AttachResult, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	batch, err := s.images.UploadBatch(ctx, s.prefix, files)
	if err != nil {
		return nil, err
	}
	failed := make([]FailedImage, 0, len(batch.Failed))
	for _, f := range batch.Failed {
		failed = append(failed, FailedImage{Name: f.Name, Reason: f.Reason})
	}
	if len(batch.URLs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no images were stored").WithDetails(failed)
	}

	item.Images = append(item.Images.Clone(), batch.URLs...)
	dto, err := s.save(ctx, item)
	if err != nil {
		for _, url := range batch.URLs {
			s.removeObject(ctx, id, url)
		}
		return nil, err
	}
	return &AttachResult{Product: *dto, Failed: failed}, nil
}

// ReorderImages replaces the gallery order. urls must contain exactly the
// current images.
func (s *service) ReorderImages(ctx context.Context, id int64, urls []string) (*ProductDTO, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isPermutation(item.Images, urls) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "images must list every current image exactly once")
	}
	item.Images = append(dbtypes.StringList{}, urls...)
	return s.save(ctx, item)
}

// PromoteImage moves the image at index to the front so it becomes the main
// image. The relative order of the others is kept.
func (s *service) PromoteImage(ctx context.Context, id int64, index int) (*ProductDTO, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkIndex(item.Images, index); err != nil {
		return nil, err
	}
	if index == 0 {
		dto := NewProductDTO(item)
		return &dto, nil
	}
	images := make(dbtypes.StringList, 0, len(item.Images))
	images = append(images, item.Images[index])
	images = append(images, item.Images[:index]...)
	images = append(images, item.Images[index+1:]...)
	item.Images = images
	return s.save(ctx, item)
}

func (s *service) RemoveImage(ctx context.Context, id int64, index int) (*ProductDTO, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkIndex(item.Images, index); err != nil {
		return nil, err
	}
	removed := item.Images[index]
	images := make(dbtypes.StringList, 0, len(item.Images)-1)
	images = append(images, item.Images[:index]...)
	images = append(images, item.Images[index+1:]...)
	item.Images = images

	dto, err := s.save(ctx, item)
	if err != nil {
		return nil, err
	}
	s.removeObject(ctx, id, removed)
	return dto, nil
}

func (s *service) load(ctx context.Context, id int64) (*models.CatalogItem, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "load product")
	}
	return item, nil
}

func (s *service) save(ctx context.Context, item *models.CatalogItem) (*ProductDTO, error) {
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	dto := NewProductDTO(item)
	return &dto, nil
}

// removeObject deletes a stored image. The product row is already updated, so
// a storage failure only leaves an orphaned object behind.
func (s *service) removeObject(ctx context.Context, id int64, url string) {
	if err := s.images.Remove(ctx, url); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"product_id": id,
			"url":        url,
			"error":      err.Error(),
		}), "products.image_delete_failed")
	}
}

func applyUpdate(item *models.CatalogItem, input UpdateProductInput) {
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		item.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		item.Price = *input.Price
	}
	if input.ImageID != nil {
		item.ImageID = *input.ImageID
	}
	if input.Description != nil {
		item.Description = trimmedOrNil(input.Description)
	}
	if input.IsFeatured != nil {
		item.IsFeatured = *input.IsFeatured
	}
}

func validateItem(item *models.CatalogItem) error {
	fields := pkgerrors.FieldErrors{}
	switch {
	case item.Name == "":
		fields["name"] = "is required"
	case len([]rune(item.Name)) > maxNameLength:
		fields["name"] = fmt.Sprintf("must be at most %d characters", maxNameLength)
	}
	switch {
	case item.Category == "":
		fields["category"] = "is required"
	case strings.EqualFold(item.Category, catalog.AllCategories):
		fields["category"] = "is reserved"
	case len([]rune(item.Category)) > maxCategoryLength:
		fields["category"] = fmt.Sprintf("must be at most %d characters", maxCategoryLength)
	}
	if item.Price < 0 {
		fields["price"] = "must not be negative"
	}
	if item.ImageID < 0 {
		fields["image_id"] = "must not be negative"
	}
	if item.Description != nil && len([]rune(*item.Description)) > maxDescriptionLength {
		fields["description"] = fmt.Sprintf("must be at most %d characters", maxDescriptionLength)
	}
	if len(fields) > 0 {
		return pkgerrors.Validation("invalid product", fields)
	}
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func checkIndex(images []string, index int) error {
	if index < 0 || index >= len(images) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image index %d out of range", index))
	}
	return nil
}

func isPermutation(current, proposed []string) bool {
	if len(current) != len(proposed) {
		return false
	}
	counts := make(map[string]int, len(current))
	for _, url := range current {
		counts[url]++
	}
	for _, url := range proposed {
		if counts[url] == 0 {
			return false
		}
		counts[url]--
	}
	return true
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, catalog.ErrItemNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
