package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ondrejklvac/eshop/api/middleware"
	"github.com/ondrejklvac/eshop/internal/model"
	"github.com/ondrejklvac/eshop/internal/service"
	"github.com/ondrejklvac/eshop/pkg/e"
	"github.com/ondrejklvac/eshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CartHandler struct {
	cartService     *service.CartService
	checkoutService *service.CheckoutService
}

func NewCartHandler(cartService *service.CartService, checkoutService *service.CheckoutService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
	}
}

// currentCart 解析当前请求的购物车归属并取出购物车
// 匿名会话第一次访问时生成令牌写回会话
func (h *CartHandler) currentCart(c *gin.Context) (*model.Cart, error) {
	sess := middleware.CurrentSession(c)

	owner := service.CartOwner{}
	if user := middleware.CurrentUser(c); user != nil {
		owner.UserID = &user.ID
	} else if token, ok := sess.CartToken(); ok {
		owner.Token = token
	}

	cart, err := h.cartService.GetOrCreateCart(c.Request.Context(), owner)
	if err != nil {
		return nil, err
	}

	if owner.UserID == nil && cart.Token != owner.Token {
		sess.SetCartToken(cart.Token)
		if err := sess.Save(c.Request, c.Writer); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// ViewCart 购物车页：明细、合计、配送方式与会话里的结算选择
func (h *CartHandler) ViewCart(c *gin.Context) {
	cart, err := h.currentCart(c)
	if err != nil {
		logger.Error("购物车加载失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	lines, err := h.cartService.Lines(c.Request.Context(), cart)
	if err != nil {
		logger.Error("购物车明细查询失败", "cart_id", cart.ID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	total, err := h.cartService.Total(c.Request.Context(), cart)
	if err != nil {
		logger.Error("购物车合计查询失败", "cart_id", cart.ID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	sess := middleware.CurrentSession(c)
	data := gin.H{
		"items":       lines,
		"total_price": total,
	}
	if method, ok := sess.ShippingMethod(); ok {
		data["shipping_method"] = method
	}
	if addr, ok := sess.ShippingAddress(); ok {
		data["shipping_address"] = addr
	} else if user := middleware.CurrentUser(c); user != nil {
		data["shipping_address"] = user.Address
	}
	if note, ok := sess.Note(); ok {
		data["note"] = note
	}

	OK(c, data)
}

// AddToCart 加入购物车：同商品条目累加数量而不是插入新行
func (h *CartHandler) AddToCart(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	quantity := int64(1)
	if q := c.PostForm("quantity"); q != "" {
		quantity, err = strconv.ParseInt(q, 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
			return
		}
	}

	cart, err := h.currentCart(c)
	if err != nil {
		logger.Error("购物车加载失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	product, err := h.cartService.AddItem(c.Request.Context(), cart, productID, quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_PRODUCT_NOT_EXISTS)
			return
		}
		if errors.Is(err, service.ErrInvalidQuantity) {
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
			return
		}
		logger.Error("加入购物车失败", "cart_id", cart.ID, "product_id", productID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"product": product.Name})
}

// RemoveFromCart 删除条目，条目不存在返回404且无任何变更
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_CART_ITEM_NOT_EXISTS)
			return
		}
		logger.Error("购物车条目删除失败", "item_id", itemID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// UpdateCart 批量更新数量，表单键形如 quantity_<item_id>
// 已不存在的条目ID静默忽略；数值非法时整个请求不做任何变更
func (h *CartHandler) UpdateCart(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	quantities := make(map[int64]int64)
	for key, values := range c.Request.PostForm {
		if !strings.HasPrefix(key, "quantity_") || len(values) == 0 {
			continue
		}
		itemID, err := strconv.ParseInt(strings.TrimPrefix(key, "quantity_"), 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
			return
		}
		quantity, err := strconv.ParseInt(values[0], 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
			return
		}
		quantities[itemID] = quantity
	}

	cart, err := h.currentCart(c)
	if err != nil {
		logger.Error("购物车加载失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	if err := h.cartService.SetQuantities(c.Request.Context(), cart, quantities); err != nil {
		logger.Error("购物车更新失败", "cart_id", cart.ID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// ApplyCredits 购物车页的积分申请入口，夹取到 min(余额, 小计+运费)
func (h *CartHandler) ApplyCredits(c *gin.Context) {
	user := middleware.CurrentUser(c)
	sess := middleware.CurrentSession(c)

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
}

// RegisterRoutes 注册购物车路由
// 加车/改数量对匿名会话开放，积分申请要求登录
func (h *CartHandler) RegisterRoutes(r *gin.RouterGroup, protected *gin.RouterGroup) {
	r.GET("/cart", h.ViewCart)
	r.POST("/add_to_cart/:product_id", h.AddToCart)
	r.POST("/remove_from_cart/:item_id", h.RemoveFromCart)
	r.POST("/update_cart", h.UpdateCart)

	protected.POST("/apply_credits", h.ApplyCredits)
}
