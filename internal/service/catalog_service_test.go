package service

import (
	"context"
	"testing"

	"github.com/ondrejklvac/eshop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateProductFiltersSpecs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product := &model.Product{
		Name:     "紫砂壶",
		Price:    28000,
		IsActive: true,
		Specs: map[string]string{
			"容量": "200ml",
			"":   "无主之值",
			"产地": "",
			"泥料": "朱泥",
		},
	}
	require.NoError(t, env.catalogService.CreateProduct(ctx, product))

	got, err := env.catalogService.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"容量": "200ml", "泥料": "朱泥"}, got.Specs)
}

func TestListActiveProductsExcludesInactive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	active := env.createProduct(t, "在售", 1000)
	hidden := env.createProduct(t, "下架", 2000)
	hidden.IsActive = false
	require.NoError(t, env.catalogService.UpdateProduct(ctx, hidden))

	products, total, err := env.catalogService.ListActiveProducts(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, active.ID, products[0].ID)

	// 下架商品详情页仍可直接访问
	_, err = env.catalogService.GetProduct(ctx, hidden.ID)
	require.NoError(t, err)

	// 后台列表包含全部商品
	all, err := env.catalogService.ListAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteProductNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product := env.createProduct(t, "一次性", 500)
	require.NoError(t, env.catalogService.DeleteProduct(ctx, product.ID))

	err := env.catalogService.DeleteProduct(ctx, product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestShippingCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	shipping := &model.Shipping{Name: "自提", Price: 0, Active: true}
	require.NoError(t, env.catalogService.CreateShipping(ctx, shipping))

	// 零元配送方式合法
	got, err := env.catalogService.GetShipping(ctx, shipping.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Price)

	got.Active = false
	require.NoError(t, env.catalogService.UpdateShipping(ctx, got))

	activeList, err := env.catalogService.ListActiveShippingMethods(ctx)
	require.NoError(t, err)
	assert.Empty(t, activeList)
	fullList, err := env.catalogService.ListShippingMethods(ctx)
	require.NoError(t, err)
	assert.Len(t, fullList, 1)

	require.NoError(t, env.catalogService.DeleteShipping(ctx, shipping.ID))
	err = env.catalogService.DeleteShipping(ctx, shipping.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
