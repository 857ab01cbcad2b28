package models

// OrderItem snapshots a cart line at submission time.
type OrderItem struct {
	ID              int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID         int64  `gorm:"column:order_id;not null;index"`
	ProductID       int64  `gorm:"column:product_id;not null"`
	ProductName     string `gorm:"column:product_name;not null"`
	Quantity        int    `gorm:"column:quantity;not null"`
	PriceAtPurchase int64  `gorm:"column:price_at_purchase;not null"`
}

func (OrderItem) TableName() string { return "order_items" }

// LineTotal is quantity times the captured unit price.
func (i OrderItem) LineTotal() int64 {
	return i.PriceAtPurchase * int64(i.Quantity)
}
