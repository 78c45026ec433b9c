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

type ProductHandler struct {
	catalogService *service.CatalogService
}

func NewProductHandler(catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// ListProducts 商品首页，只展示上架商品
func (h *ProductHandler) ListProducts(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	pageSizeStr := c.DefaultQuery("page_size", "12")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 12
	}

	products, total, err := h.catalogService.ListActiveProducts(c.Request.Context(), page, pageSize)
	if err != nil {
		logger.Error("商品列表查询失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
	})
}

// GetProduct 商品详情
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_PRODUCT_NOT_EXISTS)
			return
		}
		logger.Error("商品查询失败", "product_id", productID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"product": product})
}

// AdminListProducts 后台商品列表（含下架商品）
func (h *ProductHandler) AdminListProducts(c *gin.Context) {
	products, err := h.catalogService.ListAllProducts(c.Request.Context())
	if err != nil {
		logger.Error("后台商品列表查询失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, gin.H{"products": products})
}

// parseProductForm 解析商品表单，规格键值成对提交
func parseProductForm(c *gin.Context) (*model.Product, bool) {
	name := c.PostForm("name")
	description := c.PostForm("description")
	priceStr := c.PostForm("price")
	if name == "" || description == "" || priceStr == "" {
		return nil, false
	}
	price, err := strconv.ParseInt(priceStr, 10, 64)
	if err != nil || price < 1 {
		return nil, false
	}

	specKeys := c.PostFormArray("spec_keys[]")
	specValues := c.PostFormArray("spec_values[]")
	specs := make(map[string]string)
	for i, k := range specKeys {
		if i >= len(specValues) {
			break
		}
		specs[k] = specValues[i]
	}

	_, isActive := c.GetPostForm("is_active")
	return &model.Product{
		Name:        name,
		Description: description,
		Price:       price,
		ImageFile:   c.PostForm("image_file"),
		IsActive:    isActive,
		Specs:       specs,
	}, true
}

// AdminCreateProduct 新建商品
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	product, ok := parseProductForm(c)
	if !ok {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	if err := h.catalogService.CreateProduct(c.Request.Context(), product); err != nil {
		logger.Error("商品创建失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"product_id": product.ID})
}

// AdminUpdateProduct 编辑商品
// 改价只影响未结算的购物车，历史订单持有快照价格
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	existing, err := h.catalogService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_PRODUCT_NOT_EXISTS)
			return
		}
		logger.Error("商品查询失败", "product_id", productID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	product, ok := parseProductForm(c)
	if !ok {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	if product.ImageFile == "" {
		product.ImageFile = existing.ImageFile
	}

	if err := h.catalogService.UpdateProduct(c.Request.Context(), product); err != nil {
		logger.Error("商品更新失败", "product_id", productID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// AdminDeleteProduct 删除商品
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_PRODUCT_NOT_EXISTS)
			return
		}
		logger.Error("商品删除失败", "product_id", productID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// RegisterRoutes 注册商品浏览路由
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/", h.ListProducts)
	r.GET("/product/:id", h.GetProduct)
}

// RegisterAdminRoutes 注册后台商品路由
func (h *ProductHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.AdminListProducts)
	rg.POST("/product/new", h.AdminCreateProduct)
	rg.POST("/product/:id/edit", h.AdminUpdateProduct)
	rg.POST("/product/:id/delete", h.AdminDeleteProduct)
}
