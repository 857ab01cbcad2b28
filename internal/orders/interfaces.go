package orders

import (
	"context"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	"github.com/angelmondragon/its27-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) error
	Delete(ctx context.Context, id int64) error
}
