package service

import (
	"context"
	"errors"

	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartOwner 购物车归属：登录用户或匿名会话令牌
type CartOwner struct {
	UserID *int64
	Token  string
}

type CartService struct {
	cartDao    *dao.CartDao
	productDao *dao.ProductDao
}

func NewCartService(cartDao *dao.CartDao, productDao *dao.ProductDao) *CartService {
	return &CartService{
		cartDao:    cartDao,
		productDao: productDao,
	}
}

// GetOrCreateCart 获取归属者的唯一购物车，不存在则创建空车
// 匿名请求没有令牌时生成新令牌，调用方负责把令牌写回会话
func (s *CartService) GetOrCreateCart(ctx context.Context, owner CartOwner) (*model.Cart, error) {
	if owner.UserID != nil {
		cart, err := s.cartDao.GetCartByUserID(ctx, *owner.UserID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		cart = &model.Cart{UserID: owner.UserID}
		if err := s.cartDao.CreateCart(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	if owner.Token != "" {
		cart, err := s.cartDao.GetCartByToken(ctx, owner.Token)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	cart := &model.Cart{Token: uuid.NewString()}
	if err := s.cartDao.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem 加入购物车：已有同商品条目则累加数量，否则新建条目
// 返回商品信息供调用方提示
func (s *CartService) AddItem(ctx context.Context, cart *model.Cart, productID, quantity int64) (*model.Product, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productDao.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.cartDao.UpsertItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return product, nil
}

// RemoveItem 删除购物车条目，条目不存在返回gorm.ErrRecordNotFound
func (s *CartService) RemoveItem(ctx context.Context, itemID int64) error {
	return s.cartDao.DeleteItem(ctx, itemID)
}

// SetQuantities 批量更新条目数量
// 不属于该购物车或已不存在的条目ID静默忽略（兼容原有表单行为）
func (s *CartService) SetQuantities(ctx context.Context, cart *model.Cart, quantities map[int64]int64) error {
	for itemID, quantity := range quantities {
		if _, err := s.cartDao.UpdateItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
			return err
		}
	}
	return nil
}

// Clear 清空购物车（幂等），购物车行本身保留
func (s *CartService) Clear(ctx context.Context, cart *model.Cart) error {
	return s.cartDao.ClearItems(ctx, cart.ID)
}

// Lines 购物车明细，每次访问实时联查商品单价
func (s *CartService) Lines(ctx context.Context, cart *model.Cart) ([]model.CartLine, error) {
	return s.cartDao.ListLines(ctx, cart.ID)
}

// Total 购物车合计 = Σ 商品单价 × 数量，实时重算
// 下单之前商品改价会直接反映到这里
func (s *CartService) Total(ctx context.Context, cart *model.Cart) (int64, error) {
	return s.cartDao.Total(ctx, cart.ID)
}
