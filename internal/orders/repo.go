package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	"github.com/angelmondragon/its27-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ErrOrderNotFound is returned when no order matches the id.
var ErrOrderNotFound = errors.New("order not found")

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts the order and its items in one transaction.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error) {
	page, err := pagination.Scope(params)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if term := strings.TrimSpace(filters.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(order_code) LIKE ? OR LOWER(customer_name) LIKE ?", like, like)
	}

	var rows []models.Order
	if err := q.Scopes(page).Find(&rows).Error; err != nil {
		return nil, err
	}

	rows, next := pagination.Page(rows, params, orderCursor)
	list := &OrderList{Orders: make([]OrderDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		list.Orders = append(list.Orders, FromModel(row))
	}
	return list, nil
}

func orderCursor(o models.Order) pagination.Cursor {
	return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
}

func (r *repository) Get(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ExistsByCode reports whether an order with code was stored.
func (r *repository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("order_code = ?", code).Limit(1).Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Delete removes the order and its line items.
func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
}
