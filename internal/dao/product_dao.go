package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ondrejklvac/eshop/internal/model"
	"github.com/ondrejklvac/eshop/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ProductDao struct {
	db    *gorm.DB
	redis *redis.Client
	// 商品缓存TTL，<=0 时关闭缓存
	cacheTTL time.Duration
}

func NewProductDao(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *ProductDao {
	return &ProductDao{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
	}
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// GetProductByID 根据ID获取商品，优先读缓存
func (d *ProductDao) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	if d.cacheEnabled() {
		if raw, err := d.redis.Get(ctx, productCacheKey(id)).Bytes(); err == nil {
			var cached model.Product
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var product model.Product
	if err := d.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}

	if d.cacheEnabled() {
		if raw, err := json.Marshal(&product); err == nil {
			if err := d.redis.Set(ctx, productCacheKey(id), raw, d.cacheTTL).Err(); err != nil {
				logger.Warn("商品缓存写入失败", "product_id", id, "err", err)
			}
		}
	}
	return &product, nil
}

// ListActiveProducts 分页获取上架商品
func (d *ProductDao) ListActiveProducts(ctx context.Context, page, pageSize int) ([]*model.Product, int64, error) {
	var products []*model.Product
	var total int64
	offset := (page - 1) * pageSize

	if err := d.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := d.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Limit(pageSize).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

// ListAllProducts 获取全部商品（后台管理）
func (d *ProductDao) ListAllProducts(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := d.db.WithContext(ctx).Order("id").Find(&products).Error
	return products, err
}

// CreateProduct 创建商品
func (d *ProductDao) CreateProduct(ctx context.Context, product *model.Product) error {
	return d.db.WithContext(ctx).Create(product).Error
}

// UpdateProduct 更新商品并失效缓存
func (d *ProductDao) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := d.db.WithContext(ctx).Save(product).Error; err != nil {
		return err
	}
	d.invalidate(ctx, product.ID)
	return nil
}

// DeleteProduct 删除商品并失效缓存
func (d *ProductDao) DeleteProduct(ctx context.Context, id int64) error {
	result := d.db.WithContext(ctx).Delete(&model.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	d.invalidate(ctx, id)
	return nil
}

func (d *ProductDao) cacheEnabled() bool {
	return d.redis != nil && d.cacheTTL > 0
}

func (d *ProductDao) invalidate(ctx context.Context, id int64) {
	if !d.cacheEnabled() {
		return
	}
	if err := d.redis.Del(ctx, productCacheKey(id)).Err(); err != nil {
		logger.Warn("商品缓存失效失败", "product_id", id, "err", err)
	}
}
