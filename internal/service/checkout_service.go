// Package service 购物与结算业务实现
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/model"
	"github.com/ondrejklvac/eshop/internal/mq"
	"github.com/ondrejklvac/eshop/internal/session"
	"github.com/ondrejklvac/eshop/pkg/logger"

	"gorm.io/gorm"
)

// orderCreatedEvent 下单成功事件
type orderCreatedEvent struct {
	EventID    string `json:"event_id"`
	OccurredAt int64  `json:"occurred_at"`
	OrderID    int64  `json:"order_id"`
	UserID     int64  `json:"user_id"`
	TotalPrice int64  `json:"total_price"`
	FinalPrice int64  `json:"final_price"`
	ItemCount  int    `json:"item_count"`
}

// CheckoutView 结算页投影，纯读取无副作用，可重复调用
type CheckoutView struct {
	Lines           []model.CartLine  `json:"items"`
	Subtotal        int64             `json:"subtotal"`
	ShippingMethods []*model.Shipping `json:"shipping_methods"`
	ChosenShipping  *model.Shipping   `json:"chosen_shipping"`
	ShippingPrice   int64             `json:"shipping_price"`
	ShippingAddress string            `json:"shipping_address"`
	Note            string            `json:"note"`
	AppliedCredits  int64             `json:"applied_credits"`
	TotalDue        int64             `json:"total_due"`
}

// Choices 结算选择的部分更新，nil字段保持原值
type Choices struct {
	ShippingMethod  *int64
	ShippingAddress *string
	Note            *string
}

// CheckoutService 结算工作流：融合购物车持久状态与会话临时选择，
// 确认时一次性物化为不可变订单
type CheckoutService struct {
	db          *gorm.DB
	cartDao     *dao.CartDao
	shippingDao *dao.ShippingDao
	mqPool      *mq.Pool
}

func NewCheckoutService(db *gorm.DB, cartDao *dao.CartDao, shippingDao *dao.ShippingDao) *CheckoutService {
	return &CheckoutService{
		db:          db,
		cartDao:     cartDao,
		shippingDao: shippingDao,
	}
}

// NewCheckoutServiceWithMQ 带下单事件发布能力的结算服务
func NewCheckoutServiceWithMQ(db *gorm.DB, cartDao *dao.CartDao, shippingDao *dao.ShippingDao, mqPool *mq.Pool) *CheckoutService {
	return &CheckoutService{
		db:          db,
		cartDao:     cartDao,
		shippingDao: shippingDao,
		mqPool:      mqPool,
	}
}

// resolveShipping 解析当前生效的配送方式：
// 会话里选过且仍然存在则用之，否则回退到第一个启用的配送方式；
// 一个配送方式都没有时返回nil，运费按0处理（历史行为，保留）
func (s *CheckoutService) resolveShipping(ctx context.Context, sess *session.Session) ([]*model.Shipping, *model.Shipping, error) {
	methods, err := s.shippingDao.ListActiveShippingMethods(ctx)
	if err != nil {
		return nil, nil, err
	}

	if id, ok := sess.ShippingMethod(); ok {
		for _, m := range methods {
			if m.ID == id {
				return methods, m, nil
			}
		}
	}
	if len(methods) > 0 {
		return methods, methods[0], nil
	}
	return methods, nil, nil
}

// View 计算结算页数据：小计、运费、已申请积分、应付金额
func (s *CheckoutService) View(ctx context.Context, user *model.User, sess *session.Session) (*CheckoutView, error) {
	cart, err := s.cartDao.GetCartByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var lines []model.CartLine
	var subtotal int64
	if cart != nil {
		if lines, err = s.cartDao.ListLines(ctx, cart.ID); err != nil {
			return nil, err
		}
		for _, l := range lines {
			subtotal += l.LineTotal
		}
	}

	methods, chosen, err := s.resolveShipping(ctx, sess)
	if err != nil {
		return nil, err
	}
	var shippingPrice int64
	if chosen != nil {
		shippingPrice = chosen.Price
	}

	address, ok := sess.ShippingAddress()
	if !ok {
		address = user.Address
	}
	note, _ := sess.Note()
	applied := sess.AppliedCredits()

	return &CheckoutView{
		Lines:           lines,
		Subtotal:        subtotal,
		ShippingMethods: methods,
		ChosenShipping:  chosen,
		ShippingPrice:   shippingPrice,
		ShippingAddress: address,
		Note:            note,
		AppliedCredits:  applied,
		TotalDue:        subtotal + shippingPrice - applied,
	}, nil
}

// UpdateChoices 把提交的选择写入会话，未提交的字段保持不变
// 配送方式ID的有效性在View/Confirm时才校验
func (s *CheckoutService) UpdateChoices(sess *session.Session, choices Choices) {
	if choices.ShippingMethod != nil {
		sess.SetShippingMethod(*choices.ShippingMethod)
	}
	if choices.ShippingAddress != nil {
		sess.SetShippingAddress(*choices.ShippingAddress)
	}
	if choices.Note != nil {
		sess.SetNote(*choices.Note)
	}
}

// ApplyCredits 申请全额积分抵扣，夹取到 min(余额, 小计+运费)
// 幂等，只写会话不动余额；余额在确认下单时才扣减
func (s *CheckoutService) ApplyCredits(ctx context.Context, user *model.User, sess *session.Session) (int64, error) {
	view, err := s.View(ctx, user, sess)
	if err != nil {
		return 0, err
	}

	applied := user.Credits
	if max := view.Subtotal + view.ShippingPrice; applied > max {
		applied = max
	}
	sess.SetAppliedCredits(applied)
	return applied, nil
}

// Confirm 确认下单，唯一的写操作，整体在一个数据库事务内：
//  1. 扣减用户积分
//  2. 写入订单快照
//  3. 逐条写入订单行，单价在事务内重读当前商品价格
//  4. 清空购物车条目
//
// 任何一步失败则全部回滚，购物车保持原样
// 成功后调用方需清除会话中的applied_credits
func (s *CheckoutService) Confirm(ctx context.Context, user *model.User, sess *session.Session) (int64, error) {
	cart, err := s.cartDao.GetCartByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCartEmpty
		}
		return 0, err
	}

	_, chosen, err := s.resolveShipping(ctx, sess)
	if err != nil {
		return 0, err
	}
	var shippingID *int64
	var shippingPrice int64
	if chosen != nil {
		shippingID = &chosen.ID
		shippingPrice = chosen.Price
	}

	address, ok := sess.ShippingAddress()
	if !ok {
		address = user.Address
	}
	note, _ := sess.Note()
	requested := sess.AppliedCredits()

	var newOrder model.Order
	var itemCount int

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []model.CartItem
		if err := tx.Where("cart_id = ?", cart.ID).Order("id").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		// 事务内重读每件商品的当前单价做快照
		// 商品在加购后被删除时整单失败回滚
		var subtotal int64
		prices := make(map[int64]int64, len(items))
		for _, item := range items {
			var product model.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				return fmt.Errorf("商品 %d 重读失败: %w", item.ProductID, err)
			}
			prices[item.ProductID] = product.Price
			subtotal += product.Price * item.Quantity
		}
		totalPrice := subtotal + shippingPrice

		// 事务内重读余额并重新夹取，保证 credits_used ≤ 余额 且 ≤ 订单总额
		var owner model.User
		if err := tx.First(&owner, user.ID).Error; err != nil {
			return err
		}
		applied := requested
		if applied > owner.Credits {
			applied = owner.Credits
		}
		if applied > totalPrice {
			applied = totalPrice
		}

		if err := tx.Model(&model.User{}).Where("id = ?", owner.ID).
			Update("credits", owner.Credits-applied).Error; err != nil {
			return err
		}

		newOrder = model.Order{
			UserID:          user.ID,
			ShippingID:      shippingID,
			ShippingAddress: address,
			TotalPrice:      totalPrice,
			CreditsUsed:     applied,
			FinalPrice:      totalPrice - applied,
			Status:          model.OrderStatusNew,
			Note:            note,
		}
		if err := tx.Create(&newOrder).Error; err != nil {
			return err
		}

		for _, item := range items {
			orderItem := model.OrderItem{
				OrderID:   newOrder.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     prices[item.ProductID],
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}
		itemCount = len(items)

		// 清空购物车条目，购物车行保留
		return tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error
	})
	if err != nil {
		return 0, err
	}

	sess.PopAppliedCredits()
	s.publishOrderCreated(&newOrder, itemCount)

	return newOrder.ID, nil
}

// publishOrderCreated 发布下单事件，失败只记日志不影响订单
func (s *CheckoutService) publishOrderCreated(order *model.Order, itemCount int) {
	if s.mqPool == nil {
		return
	}
	evt := orderCreatedEvent{
		EventID:    deterministicEventID(order.ID, order.UserID, "created"),
		OccurredAt: time.Now().Unix(),
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		FinalPrice: order.FinalPrice,
		ItemCount:  itemCount,
	}
	b, mErr := json.Marshal(evt)
	if mErr != nil {
		logger.Warn("下单事件序列化失败", "order_id", order.ID, "err", mErr)
		return
	}
	// 使用事件ID作为 AMQP MessageId，便于下游幂等
	if err := s.mqPool.PublishAsyncWithID(mq.ExchangeName, mq.OrderCreatedKey, b, evt.EventID); err != nil {
		logger.Warn("下单事件发布失败", "order_id", order.ID, "err", err)
	} else {
		logger.Info("下单事件已发布", "order_id", order.ID, "final_price", order.FinalPrice, "event_id", evt.EventID)
	}
}

// deterministicEventID 生成简易幂等事件ID（避免依赖外部库）
func deterministicEventID(orderID, userID int64, action string) string {
	return fmt.Sprintf("%d-%d-%s", orderID, userID, action)
}
