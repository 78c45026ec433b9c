package service

import (
	"context"

	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/model"
)

// CatalogService 商品目录与配送方式，读多写少，写入只来自后台管理
type CatalogService struct {
	productDao  *dao.ProductDao
	shippingDao *dao.ShippingDao
}

func NewCatalogService(productDao *dao.ProductDao, shippingDao *dao.ShippingDao) *CatalogService {
	return &CatalogService{
		productDao:  productDao,
		shippingDao: shippingDao,
	}
}

// ListActiveProducts 分页获取上架商品
func (s *CatalogService) ListActiveProducts(ctx context.Context, page, pageSize int) ([]*model.Product, int64, error) {
	return s.productDao.ListActiveProducts(ctx, page, pageSize)
}

// GetProduct 商品详情
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.productDao.GetProductByID(ctx, id)
}

// ListAllProducts 全部商品（后台管理）
func (s *CatalogService) ListAllProducts(ctx context.Context) ([]*model.Product, error) {
	return s.productDao.ListAllProducts(ctx)
}

// CreateProduct 新建商品，规格表过滤空键空值
func (s *CatalogService) CreateProduct(ctx context.Context, product *model.Product) error {
	product.Specs = filterSpecs(product.Specs)
	return s.productDao.CreateProduct(ctx, product)
}

// UpdateProduct 编辑商品，改价不影响历史订单（订单行持有单价快照）
func (s *CatalogService) UpdateProduct(ctx context.Context, product *model.Product) error {
	product.Specs = filterSpecs(product.Specs)
	return s.productDao.UpdateProduct(ctx, product)
}

// DeleteProduct 删除商品
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.productDao.DeleteProduct(ctx, id)
}

// GetShipping 根据ID获取配送方式
func (s *CatalogService) GetShipping(ctx context.Context, id int64) (*model.Shipping, error) {
	return s.shippingDao.GetShippingByID(ctx, id)
}

// ListShippingMethods 全部配送方式（后台管理）
func (s *CatalogService) ListShippingMethods(ctx context.Context) ([]*model.Shipping, error) {
	return s.shippingDao.ListShippingMethods(ctx)
}

// ListActiveShippingMethods 启用的配送方式（结算页）
func (s *CatalogService) ListActiveShippingMethods(ctx context.Context) ([]*model.Shipping, error) {
	return s.shippingDao.ListActiveShippingMethods(ctx)
}

// CreateShipping 新建配送方式
func (s *CatalogService) CreateShipping(ctx context.Context, shipping *model.Shipping) error {
	return s.shippingDao.CreateShipping(ctx, shipping)
}

// UpdateShipping 编辑配送方式，立即对后续结算生效
func (s *CatalogService) UpdateShipping(ctx context.Context, shipping *model.Shipping) error {
	return s.shippingDao.UpdateShipping(ctx, shipping)
}

// DeleteShipping 删除配送方式
func (s *CatalogService) DeleteShipping(ctx context.Context, id int64) error {
	return s.shippingDao.DeleteShipping(ctx, id)
}

// filterSpecs 过滤规格表中的空键与空值
func filterSpecs(specs map[string]string) map[string]string {
	if len(specs) == 0 {
		return specs
	}
	filtered := make(map[string]string, len(specs))
	for k, v := range specs {
		if k == "" || v == "" {
			continue
		}
		filtered[k] = v
	}
	return filtered
}
