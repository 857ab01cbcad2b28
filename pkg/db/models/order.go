package models

import (
	"time"

	"github.com/angelmondragon/its27-backend/pkg/enums"
)

// Order is a placed checkout. Prices are whole colones.
type Order struct {
	ID             int64               `gorm:"column:id;primaryKey;autoIncrement"`
	OrderCode      string              `gorm:"column:order_code;not null;index"`
	CustomerName   string              `gorm:"column:customer_name;not null"`
	CustomerPhone  string              `gorm:"column:customer_phone;not null"`
	Province       string              `gorm:"column:province;not null"`
	Canton         string              `gorm:"column:canton;not null"`
	District       string              `gorm:"column:district;not null"`
	Address        string              `gorm:"column:address;not null"`
	SubtotalAmount int64               `gorm:"column:subtotal_amount;not null"`
	ShippingCost   int64               `gorm:"column:shipping_cost;not null"`
	TotalAmount    int64               `gorm:"column:total_amount;not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Status         enums.OrderStatus   `gorm:"column:status;not null;default:pending"`
	Items          []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
