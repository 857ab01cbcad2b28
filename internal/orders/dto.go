package orders

import (
	"time"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
)

// ListFilters narrows the admin order list.
type ListFilters struct {
	Status *enums.OrderStatus
	Query  string
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// OrderItemDTO is a purchased line as captured at checkout.
type OrderItemDTO struct {
	ProductID       int64  `json:"product_id"`
	ProductName     string `json:"product_name"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase int64  `json:"price_at_purchase"`
	LineTotal       int64  `json:"line_total"`
}

// OrderDTO is the admin view of an order.
type OrderDTO struct {
	ID             int64               `json:"id"`
	OrderCode      string              `json:"order_code"`
	CustomerName   string              `json:"customer_name"`
	CustomerPhone  string              `json:"customer_phone"`
	Province       string              `json:"province"`
	Canton         string              `json:"canton"`
	District       string              `json:"district"`
	Address        string              `json:"address"`
	SubtotalAmount int64               `json:"subtotal_amount"`
	ShippingCost   int64               `json:"shipping_cost"`
	TotalAmount    int64               `json:"total_amount"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	Status         enums.OrderStatus   `json:"status"`
	Items          []OrderItemDTO      `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// FromModel maps a persisted order into its API shape.
func FromModel(o models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			LineTotal:       item.LineTotal(),
		})
	}
	return OrderDTO{
		ID:             o.ID,
		OrderCode:      o.OrderCode,
		CustomerName:   o.CustomerName,
		CustomerPhone:  o.CustomerPhone,
		Province:       o.Province,
		Canton:         o.Canton,
		District:       o.District,
		Address:        o.Address,
		SubtotalAmount: o.SubtotalAmount,
		ShippingCost:   o.ShippingCost,
		TotalAmount:    o.TotalAmount,
		PaymentMethod:  o.PaymentMethod,
		Status:         o.Status,
		Items:          items,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
