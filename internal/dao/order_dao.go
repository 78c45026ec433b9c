package dao

import (
	"context"
	"errors"

	"github.com/ondrejklvac/eshop/internal/model"

	"gorm.io/gorm"
)

type OrderDao struct {
	db *gorm.DB
}

func NewOrderDao(db *gorm.DB) *OrderDao {
	return &OrderDao{
		db: db,
	}
}

var ErrOrderStatusInvalid = errors.New("订单状态不合法")

// DB 暴露底层连接，结算事务需要跨DAO的原子单元
func (d *OrderDao) DB() *gorm.DB {
	return d.db
}

// GetOrderByID 根据ID获取订单
func (d *OrderDao) GetOrderByID(ctx context.Context, orderID int64) (*model.Order, error) {
	var order model.Order
	err := d.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems 获取订单行
func (d *OrderDao) GetOrderItems(ctx context.Context, orderID int64) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := d.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&items).Error
	return items, err
}

// GetUserOrders 获取用户订单列表
func (d *OrderDao) GetUserOrders(ctx context.Context, userID int64, page, pageSize int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64
	offset := (page - 1) * pageSize

	// 获取总数
	if err := d.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 获取分页数据
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

// ListOrders 获取全部订单（后台管理）
func (d *OrderDao) ListOrders(ctx context.Context, page, pageSize int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64
	offset := (page - 1) * pageSize

	if err := d.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := d.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

// UpdateOrderStatus 更新订单状态，仅接受合法状态字面量
func (d *OrderDao) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	if !model.ValidStatusTransition(status) {
		return ErrOrderStatusInvalid
	}
	result := d.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateAdminNote 更新订单内部备注，不影响状态
func (d *OrderDao) UpdateAdminNote(ctx context.Context, orderID int64, note string) error {
	result := d.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("admin_note", note)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
