package messages

import (
	"context"
	"errors"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	"github.com/angelmondragon/its27-backend/pkg/pagination"
	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

// Repository persists contact messages.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// List returns one page newest first plus the cursor of the next page.
func (r *Repository) List(ctx context.Context, status *enums.MessageStatus, params pagination.Params) ([]models.ContactMessage, string, error) {
	page, err := pagination.Scope(params)
	if err != nil {
		return nil, "", err
	}
	q := r.db.WithContext(ctx).Model(&models.ContactMessage{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var rows []models.ContactMessage
	if err := q.Scopes(page).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	rows, next := pagination.Page(rows, params, func(m models.ContactMessage) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	return rows, next, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status enums.MessageStatus) error {
	res := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContactMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
