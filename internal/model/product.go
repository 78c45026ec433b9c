package model

import (
	"time"
)

type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	// 单价，最小货币单位
	Price     int64             `gorm:"not null" json:"price"`
	ImageFile string            `gorm:"size:200" json:"image_file"`
	IsActive  bool              `gorm:"not null;default:true" json:"is_active"`
	Specs     map[string]string `gorm:"serializer:json;type:text" json:"specs"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Product) TableName() string {
	return "products"
}
