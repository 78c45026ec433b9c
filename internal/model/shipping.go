package model

// Shipping 配送方式
type Shipping struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:200" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
}

func (*Shipping) TableName() string {
	return "shipping"
}
