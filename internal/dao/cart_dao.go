package dao

import (
	"context"
	"errors"

	"github.com/ondrejklvac/eshop/internal/model"

	"gorm.io/gorm"
)

type CartDao struct {
	db *gorm.DB
}

func NewCartDao(db *gorm.DB) *CartDao {
	return &CartDao{db: db}
}

// GetCartByUserID 获取用户的购物车
func (d *CartDao) GetCartByUserID(ctx context.Context, userID int64) (*model.Cart, error) {
	var cart model.Cart
	err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCartByToken 获取匿名购物车
func (d *CartDao) GetCartByToken(ctx context.Context, token string) (*model.Cart, error) {
	var cart model.Cart
	err := d.db.WithContext(ctx).Where("token = ?", token).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateCart 持久化新的空购物车
func (d *CartDao) CreateCart(ctx context.Context, cart *model.Cart) error {
	return d.db.WithContext(ctx).Create(cart).Error
}

// GetItemByID 根据ID获取购物车条目
func (d *CartDao) GetItemByID(ctx context.Context, itemID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := d.db.WithContext(ctx).First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemByProduct 获取购物车内指定商品的条目
func (d *CartDao) GetItemByProduct(ctx context.Context, cartID, productID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := d.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertItem 新增条目或累加已存在条目的数量
// (cart_id, product_id) 最多一行
func (d *CartDao) UpsertItem(ctx context.Context, cartID, productID, quantity int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.CartItem
		err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&model.CartItem{
				CartID:    cartID,
				ProductID: productID,
				Quantity:  quantity,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&item).Update("quantity", item.Quantity+quantity).Error
	})
}

// UpdateItemQuantity 设置条目数量，条目不存在时返回影响行数0
func (d *CartDao) UpdateItemQuantity(ctx context.Context, cartID, itemID, quantity int64) (int64, error) {
	result := d.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	return result.RowsAffected, result.Error
}

// DeleteItem 删除购物车条目
func (d *CartDao) DeleteItem(ctx context.Context, itemID int64) error {
	result := d.db.WithContext(ctx).Delete(&model.CartItem{}, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearItems 清空购物车条目（幂等），购物车行保留
func (d *CartDao) ClearItems(ctx context.Context, cartID int64) error {
	return d.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}

// ListLines 联查购物车条目与商品，返回带单价的行
func (d *CartDao) ListLines(ctx context.Context, cartID int64) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := d.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.id AS item_id, cart_items.product_id, products.name AS product_name, products.price AS unit_price, cart_items.quantity, products.price * cart_items.quantity AS line_total").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.id").
		Scan(&lines).Error
	return lines, err
}

// Total 购物车合计，实时重算不做缓存
func (d *CartDao) Total(ctx context.Context, cartID int64) (int64, error) {
	var total *int64
	err := d.db.WithContext(ctx).
		Table("cart_items").
		Select("SUM(products.price * cart_items.quantity)").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// CountItems 购物车条目数
func (d *CartDao) CountItems(ctx context.Context, cartID int64) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error
	return count, err
}
