package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAddItemMergesDuplicateProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "cart1@example.com", 0)
	product := env.createProduct(t, "茶盘", 4000)
	cart := env.userCart(t, user)

	_, err := env.cartService.AddItem(ctx, cart, product.ID, 2)
	require.NoError(t, err)
	_, err = env.cartService.AddItem(ctx, cart, product.ID, 3)
	require.NoError(t, err)

	// 同一商品只保留一条，数量累加
	lines, err := env.cartService.Lines(ctx, cart)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(5), lines[0].Quantity)
	assert.Equal(t, int64(20000), lines[0].LineTotal)
}

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "cart2@example.com", 0)
	product := env.createProduct(t, "茶则", 1500)
	cart := env.userCart(t, user)

	_, err := env.cartService.AddItem(ctx, cart, product.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = env.cartService.AddItem(ctx, cart, 99999, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "cart3@example.com", 0)
	product := env.createProduct(t, "茶巾", 800)
	cart := env.userCart(t, user)

	_, err := env.cartService.AddItem(ctx, cart, product.ID, 1)
	require.NoError(t, err)
	lines, err := env.cartService.Lines(ctx, cart)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	require.NoError(t, env.cartService.RemoveItem(ctx, lines[0].ItemID))

	// 删除不存在的条目返回未找到
	err = env.cartService.RemoveItem(ctx, lines[0].ItemID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSetQuantitiesIgnoresUnknownItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "cart4@example.com", 0)
	a := env.createProduct(t, "盖碗", 6000)
	b := env.createProduct(t, "公道杯", 4500)
	cart := env.userCart(t, user)

	_, err := env.cartService.AddItem(ctx, cart, a.ID, 1)
	require.NoError(t, err)
	_, err = env.cartService.AddItem(ctx, cart, b.ID, 1)
	require.NoError(t, err)

	lines, err := env.cartService.Lines(ctx, cart)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// 未知条目ID静默忽略，已知条目正常更新
	err = env.cartService.SetQuantities(ctx, cart, map[int64]int64{
		lines[0].ItemID: 4,
		99999:           7,
	})
	require.NoError(t, err)

	updated, err := env.cartService.Lines(ctx, cart)
	require.NoError(t, err)
	byItem := make(map[int64]int64, len(updated))
	for _, l := range updated {
		byItem[l.ItemID] = l.Quantity
	}
	assert.Equal(t, int64(4), byItem[lines[0].ItemID])
	assert.Equal(t, int64(1), byItem[lines[1].ItemID])
}

// 购物车总额随商品当前价实时计算
func TestCartTotalTracksCurrentPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "cart5@example.com", 0)
	product := env.createProduct(t, "水盂", 3000)
	cart := env.userCart(t, user)

	_, err := env.cartService.AddItem(ctx, cart, product.ID, 2)
	require.NoError(t, err)

	total, err := env.cartService.Total(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), total)

	product.Price = 5000
	require.NoError(t, env.products.UpdateProduct(ctx, product))

	total, err = env.cartService.Total(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), total)
}

func TestGetOrCreateCartByToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 匿名访客：首次创建带token的购物车
	anon, err := env.cartService.GetOrCreateCart(ctx, CartOwner{})
	require.NoError(t, err)
	require.NotEmpty(t, anon.Token)
	assert.Nil(t, anon.UserID)

	// 同token复用同一购物车
	again, err := env.cartService.GetOrCreateCart(ctx, CartOwner{Token: anon.Token})
	require.NoError(t, err)
	assert.Equal(t, anon.ID, again.ID)

	// 登录用户与匿名购物车互不干扰
	user := env.createUser(t, "cart6@example.com", 0)
	owned := env.userCart(t, user)
	assert.NotEqual(t, anon.ID, owned.ID)
	require.NotNil(t, owned.UserID)
	assert.Equal(t, user.ID, *owned.UserID)
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "cart7@example.com", 0)
	product := env.createProduct(t, "茶漏", 1200)
	cart := env.userCart(t, user)

	_, err := env.cartService.AddItem(ctx, cart, product.ID, 3)
	require.NoError(t, err)

	require.NoError(t, env.cartService.Clear(ctx, cart))
	total, err := env.cartService.Total(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// 清空空车不报错
	require.NoError(t, env.cartService.Clear(ctx, cart))
}
