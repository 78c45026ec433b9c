package model

import (
	"time"
)

// Cart 购物车，属于登录用户或匿名会话（Token）
type Cart struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID *int64 `gorm:"index" json:"user_id"`
	// 匿名购物车令牌，保存在客户端会话里
	Token     string    `gorm:"size:64;index" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Cart) TableName() string {
	return "carts"
}

// CartItem 购物车条目，(cart_id, product_id) 唯一
type CartItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64 `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`
}

func (*CartItem) TableName() string {
	return "cart_items"
}

// CartLine 购物车条目与商品的联查结果（不做懒加载）
type CartLine struct {
	ItemID      int64  `json:"item_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	LineTotal   int64  `json:"line_total"`
}
