package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ondrejklvac/eshop/api/middleware"
	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/service"
	"github.com/ondrejklvac/eshop/pkg/e"
	"github.com/ondrejklvac/eshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func parsePageParams(c *gin.Context, defaultPageSize int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// ListOrders 当前用户的订单列表，新订单在前
func (h *OrderHandler) ListOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, pageSize := parsePageParams(c, 10)

	orders, total, err := h.orderService.ListUserOrders(c.Request.Context(), user.ID, page, pageSize)
	if err != nil {
		logger.Error("订单列表查询失败", "user_id", user.ID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
	})
}

// GetOrder 订单详情，仅归属人或管理员可见
func (h *OrderHandler) GetOrder(c *gin.Context) {
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

// AdminListOrders 后台订单列表
func (h *OrderHandler) AdminListOrders(c *gin.Context) {
	page, pageSize := parsePageParams(c, 20)

	orders, total, err := h.orderService.ListAllOrders(c.Request.Context(), page, pageSize)
	if err != nil {
		logger.Error("后台订单列表查询失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
	})
}

// AdminGetOrder 后台订单详情
func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
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
		logger.Error("订单查询失败", "order_id", orderID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"order": detail.Order, "items": detail.Items})
}

// AdminUpdateStatus 设置订单状态
// 未识别的状态字面量整体拒绝，不落库
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	status := c.PostForm("status")
	if err := h.orderService.SetStatus(c.Request.Context(), orderID, status); err != nil {
		if errors.Is(err, dao.ErrOrderStatusInvalid) {
			Fail(c, http.StatusBadRequest, e.ERROR_ORDER_STATUS)
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_ORDER_NOT_EXISTS)
			return
		}
		logger.Error("订单状态更新失败", "order_id", orderID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// AdminAddNote 更新内部备注，自由文本
func (h *OrderHandler) AdminAddNote(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	note := c.PostForm("admin_note")
	if err := h.orderService.SetAdminNote(c.Request.Context(), orderID, note); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_ORDER_NOT_EXISTS)
			return
		}
		logger.Error("订单备注更新失败", "order_id", orderID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// RegisterRoutes 注册用户订单路由
func (h *OrderHandler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/orders", h.ListOrders)
	protected.GET("/order/:order_id", h.GetOrder)
}

// RegisterAdminRoutes 注册后台订单路由
func (h *OrderHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders", h.AdminListOrders)
	rg.GET("/order/:id", h.AdminGetOrder)
	rg.POST("/order/:id/status", h.AdminUpdateStatus)
	rg.POST("/order/:id/note", h.AdminAddNote)
}
