package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ondrejklvac/eshop/internal/model"
	"github.com/ondrejklvac/eshop/internal/service"
	"github.com/ondrejklvac/eshop/pkg/e"
	"github.com/ondrejklvac/eshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ShippingHandler struct {
	catalogService *service.CatalogService
}

func NewShippingHandler(catalogService *service.CatalogService) *ShippingHandler {
	return &ShippingHandler{catalogService: catalogService}
}

// AdminListShipping 后台配送方式列表
func (h *ShippingHandler) AdminListShipping(c *gin.Context) {
	methods, err := h.catalogService.ListShippingMethods(c.Request.Context())
	if err != nil {
		logger.Error("配送方式查询失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, gin.H{"shipping_methods": methods})
}

func parseShippingForm(c *gin.Context) (*model.Shipping, bool) {
	name := c.PostForm("name")
	priceStr := c.PostForm("price")
	if name == "" || priceStr == "" {
		return nil, false
	}
	price, err := strconv.ParseInt(priceStr, 10, 64)
	if err != nil || price < 0 {
		return nil, false
	}

	_, active := c.GetPostForm("active")
	return &model.Shipping{
		Name:        name,
		Description: c.PostForm("description"),
		Price:       price,
		Active:      active,
	}, true
}

// AdminCreateShipping 新建配送方式
func (h *ShippingHandler) AdminCreateShipping(c *gin.Context) {
	shipping, ok := parseShippingForm(c)
	if !ok {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	if err := h.catalogService.CreateShipping(c.Request.Context(), shipping); err != nil {
		logger.Error("配送方式创建失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, gin.H{"shipping_id": shipping.ID})
}

// AdminUpdateShipping 编辑配送方式
// 改价立即对后续结算生效，但不回溯已有订单
func (h *ShippingHandler) AdminUpdateShipping(c *gin.Context) {
	shippingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	if _, err := h.catalogService.GetShipping(c.Request.Context(), shippingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_SHIPPING_NOT_EXISTS)
			return
		}
		logger.Error("配送方式查询失败", "shipping_id", shippingID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	shipping, ok := parseShippingForm(c)
	if !ok {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}
	shipping.ID = shippingID

	if err := h.catalogService.UpdateShipping(c.Request.Context(), shipping); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_SHIPPING_NOT_EXISTS)
			return
		}
		logger.Error("配送方式更新失败", "shipping_id", shippingID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// AdminDeleteShipping 删除配送方式
func (h *ShippingHandler) AdminDeleteShipping(c *gin.Context) {
	shippingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	if err := h.catalogService.DeleteShipping(c.Request.Context(), shippingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_SHIPPING_NOT_EXISTS)
			return
		}
		logger.Error("配送方式删除失败", "shipping_id", shippingID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// RegisterAdminRoutes 注册后台配送路由
func (h *ShippingHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/shipping", h.AdminListShipping)
	rg.POST("/shipping", h.AdminCreateShipping)
	rg.POST("/shipping/:id/edit", h.AdminUpdateShipping)
	rg.POST("/shipping/:id/delete", h.AdminDeleteShipping)
}
