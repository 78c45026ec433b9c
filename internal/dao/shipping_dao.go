package dao

import (
	"context"

	"github.com/ondrejklvac/eshop/internal/model"

	"gorm.io/gorm"
)

type ShippingDao struct {
	db *gorm.DB
}

func NewShippingDao(db *gorm.DB) *ShippingDao {
	return &ShippingDao{db: db}
}

// GetShippingByID 根据ID获取配送方式
func (d *ShippingDao) GetShippingByID(ctx context.Context, id int64) (*model.Shipping, error) {
	var shipping model.Shipping
	err := d.db.WithContext(ctx).First(&shipping, id).Error
	if err != nil {
		return nil, err
	}
	return &shipping, nil
}

// ListShippingMethods 获取全部配送方式
func (d *ShippingDao) ListShippingMethods(ctx context.Context) ([]*model.Shipping, error) {
	var methods []*model.Shipping
	err := d.db.WithContext(ctx).Order("id").Find(&methods).Error
	return methods, err
}

// ListActiveShippingMethods 获取启用的配送方式
func (d *ShippingDao) ListActiveShippingMethods(ctx context.Context) ([]*model.Shipping, error) {
	var methods []*model.Shipping
	err := d.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&methods).Error
	return methods, err
}

// CreateShipping 创建配送方式
func (d *ShippingDao) CreateShipping(ctx context.Context, shipping *model.Shipping) error {
	return d.db.WithContext(ctx).Create(shipping).Error
}

// UpdateShipping 更新配送方式，改价不影响历史订单（订单持有快照价格）
func (d *ShippingDao) UpdateShipping(ctx context.Context, shipping *model.Shipping) error {
	return d.db.WithContext(ctx).Save(shipping).Error
}

// DeleteShipping 删除配送方式
func (d *ShippingDao) DeleteShipping(ctx context.Context, id int64) error {
	result := d.db.WithContext(ctx).Delete(&model.Shipping{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
