package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ondrejklvac/eshop/api/middleware"
	"github.com/ondrejklvac/eshop/internal/service"
	"github.com/ondrejklvac/eshop/pkg/e"
	"github.com/ondrejklvac/eshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	orderService    *service.OrderService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService, orderService *service.OrderService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// ViewCheckout 结算页，纯投影无副作用
func (h *CheckoutHandler) ViewCheckout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	sess := middleware.CurrentSession(c)

	view, err := h.checkoutService.View(c.Request.Context(), user, sess)
	if err != nil {
		logger.Error("结算页加载失败", "user_id", user.ID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"checkout": view})
}

// PostCheckout 结算页提交
// 先把本次提交的配送/地址/备注写入会话，再根据表单字段分支：
// apply_credits 申请积分抵扣，confirm_order 确认下单
func (h *CheckoutHandler) PostCheckout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	sess := middleware.CurrentSession(c)

	choices := service.Choices{}
	if v, ok := c.GetPostForm("shipping_method"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
			return
		}
		choices.ShippingMethod = &id
	}
	if v, ok := c.GetPostForm("shipping_address"); ok {
		choices.ShippingAddress = &v
	}
	if v, ok := c.GetPostForm("note"); ok {
		choices.Note = &v
	}
	h.checkoutService.UpdateChoices(sess, choices)

	// 1) 申请积分抵扣
	if _, ok := c.GetPostForm("apply_credits"); ok {
		applied, err := h.checkoutService.ApplyCredits(c.Request.Context(), user, sess)
		if err != nil {
			logger.Error("积分申请失败", "user_id", user.ID, "err", err)
			Fail(c, http.StatusInternalServerError, e.ERROR)
			return
		}
		if err := sess.Save(c.Request, c.Writer); err != nil {
			logger.Error("会话写入失败", "err", err)
			Fail(c, http.StatusInternalServerError, e.ERROR)
			return
		}
		OK(c, gin.H{"applied_credits": applied})
		return
	}

	// 2) 确认下单
	if _, ok := c.GetPostForm("confirm_order"); ok {
		orderID, err := h.checkoutService.Confirm(c.Request.Context(), user, sess)
		if err != nil {
			if err := sess.Save(c.Request, c.Writer); err != nil {
				logger.Error("会话写入失败", "err", err)
			}
			if errors.Is(err, service.ErrCartEmpty) {
				Fail(c, http.StatusBadRequest, e.ERROR_CART_EMPTY)
				return
			}
			// 事务已整体回滚，购物车保持原样
			logger.Error("下单失败", "user_id", user.ID, "err", err)
			Fail(c, http.StatusInternalServerError, e.ERROR_CHECKOUT_FAILED)
			return
		}

		if err := sess.Save(c.Request, c.Writer); err != nil {
			logger.Error("会话写入失败", "err", err)
			Fail(c, http.StatusInternalServerError, e.ERROR)
			return
		}
		OK(c, gin.H{"order_id": orderID})
		return
	}

	// 仅保存选择
	if err := sess.Save(c.Request, c.Writer); err != nil {
		logger.Error("会话写入失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// OrderConfirmation 下单成功页，仅归属人或管理员可见
func (h *CheckoutHandler) OrderConfirmation(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	user := middleware.CurrentUser(c)
	detail, err := h.orderService.GetOrderForUser(c.Request.Context(), orderID, user)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_ORDER_NOT_EXISTS)
			return
		}
		if errors.Is(err, service.ErrForbidden) {
			Fail(c, http.StatusForbidden, e.ERROR_FORBIDDEN)
			return
		}
		logger.Error("订单查询失败", "order_id", orderID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"order": detail.Order, "items": detail.Items})
}

// RegisterRoutes 注册结算路由，全部要求登录
func (h *CheckoutHandler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/checkout", h.ViewCheckout)
	protected.POST("/checkout", h.PostCheckout)
	protected.GET("/order_confirmation/:order_id", h.OrderConfirmation)
}
