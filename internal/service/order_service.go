package service

import (
	"context"

	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/model"
)

// OrderDetail 订单及其订单行
type OrderDetail struct {
	Order *model.Order       `json:"order"`
	Items []*model.OrderItem `json:"items"`
}

type OrderService struct {
	orderDao *dao.OrderDao
}

func NewOrderService(orderDao *dao.OrderDao) *OrderService {
	return &OrderService{
		orderDao: orderDao,
	}
}

// GetOrderForUser 获取订单详情，仅订单归属人或管理员可见
func (s *OrderService) GetOrderForUser(ctx context.Context, orderID int64, user *model.User) (*OrderDetail, error) {
	order, err := s.orderDao.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID && !user.IsAdmin {
		return nil, ErrForbidden
	}

	items, err := s.orderDao.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: order, Items: items}, nil
}

// ListUserOrders 获取用户订单列表，新订单在前
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, page, pageSize int) ([]*model.Order, int64, error) {
	return s.orderDao.GetUserOrders(ctx, userID, page, pageSize)
}

// ListAllOrders 获取全部订单（后台管理）
func (s *OrderService) ListAllOrders(ctx context.Context, page, pageSize int) ([]*model.Order, int64, error) {
	return s.orderDao.ListOrders(ctx, page, pageSize)
}

// SetStatus 管理员设置订单状态，仅接受已识别的非初始状态
// 状态之间无相邻约束，任意已识别状态可直达
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, status string) error {
	return s.orderDao.UpdateOrderStatus(ctx, orderID, status)
}

// SetAdminNote 管理员更新内部备注，自由文本，与状态无关
func (s *OrderService) SetAdminNote(ctx context.Context, orderID int64, note string) error {
	return s.orderDao.UpdateAdminNote(ctx, orderID, note)
}
