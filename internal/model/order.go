package model

import "time"

// Order 订单快照，下单后不可变（状态与内部备注除外）
type Order struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID          int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	ShippingID      *int64    `gorm:"column:shipping_id;index" json:"shipping_id"`
	ShippingAddress string    `gorm:"column:shipping_address;size:200" json:"shipping_address"`
	TotalPrice      int64     `gorm:"column:total_price;not null" json:"total_price"`
	CreditsUsed     int64     `gorm:"column:credits_used;not null;default:0" json:"credits_used"`
	FinalPrice      int64     `gorm:"column:final_price;not null" json:"final_price"`
	Status          string    `gorm:"column:status;size:20;not null;default:new" json:"status"`
	Note            string    `gorm:"column:note;type:text" json:"note"`
	AdminNote       string    `gorm:"column:admin_note;type:text" json:"admin_note"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单行，记录下单时的单价快照
type OrderItem struct {
	ID        int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID int64 `gorm:"column:product_id;not null" json:"product_id"`
	Quantity  int64 `gorm:"column:quantity;not null" json:"quantity"`
	// 下单时刻的单价快照，后续改价不影响历史订单
	Price int64 `gorm:"column:price;not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// 订单状态常量
const (
	OrderStatusNew        = "new"
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidStatusTransition 可由管理员设置的目标状态（初始状态new除外）
func ValidStatusTransition(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
