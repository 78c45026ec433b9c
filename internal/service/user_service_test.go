package service

import (
	"context"
	"testing"

	"github.com/ondrejklvac/eshop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.userService.Register(ctx, "Jana", "Nováková", "jana@example.com", "tajneheslo")
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "tajneheslo", user.PasswordHash)
	assert.False(t, user.IsAdmin)
	assert.Equal(t, int64(0), user.Credits)

	// 邮箱重复注册被拒绝
	_, err = env.userService.Register(ctx, "Jana", "Dvořáková", "jana@example.com", "jineheslo")
	assert.ErrorIs(t, err, ErrEmailExists)

	logged, err := env.userService.Login(ctx, "jana@example.com", "tajneheslo")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = env.userService.Login(ctx, "jana@example.com", "spatne")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = env.userService.Login(ctx, "nikdo@example.com", "cokoliv")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAdjustCredits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "credits@example.com", 1000)

	balance, err := env.userService.AdjustCredits(ctx, user.ID, CreditsActionAdd, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)

	// 扣减超过余额时落到0而不是负数
	balance, err = env.userService.AdjustCredits(ctx, user.ID, CreditsActionSubtract, 9999)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	balance, err = env.userService.AdjustCredits(ctx, user.ID, CreditsActionSet, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)

	_, err = env.userService.AdjustCredits(ctx, user.ID, "double", 1)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestAdminEditUserCannotDemoteSelf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin@example.com", 0)
	require.NoError(t, env.users.UpdateUser(ctx, admin.ID, map[string]interface{}{"is_admin": true}))
	admin = env.reloadUser(t, admin.ID)

	other := env.createUser(t, "member@example.com", 0)

	// 管理员给他人授权正常生效
	err := env.userService.AdminEditUser(ctx, admin, other.ID, AdminEditUserInput{
		FirstName: other.FirstName,
		LastName:  other.LastName,
		Email:     other.Email,
		Address:   other.Address,
		IsAdmin:   true,
	})
	require.NoError(t, err)
	assert.True(t, env.reloadUser(t, other.ID).IsAdmin)

	// 对自己的is_admin修改被忽略，其余字段照常更新
	err = env.userService.AdminEditUser(ctx, admin, admin.ID, AdminEditUserInput{
		FirstName: "Renamed",
		LastName:  admin.LastName,
		Email:     admin.Email,
		Address:   admin.Address,
		IsAdmin:   false,
	})
	require.NoError(t, err)
	after := env.reloadUser(t, admin.ID)
	assert.True(t, after.IsAdmin)
	assert.Equal(t, "Renamed", after.FirstName)
}

func TestAdminDeleteUserGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "boss@example.com", 0)
	customer := env.createUser(t, "zakaznik@example.com", 0)

	// 不能删除自己
	err := env.userService.AdminDeleteUser(ctx, admin, admin.ID)
	assert.ErrorIs(t, err, ErrSelfOperation)

	// 有订单的用户不可删除
	order := &model.Order{UserID: customer.ID, Status: model.OrderStatusNew}
	require.NoError(t, env.db.Create(order).Error)
	err = env.userService.AdminDeleteUser(ctx, admin, customer.ID)
	assert.ErrorIs(t, err, ErrUserHasOrders)

	// 无订单用户删除时连同购物车清理
	disposable := env.createUser(t, "docasny@example.com", 0)
	cart := env.userCart(t, disposable)
	product := env.createProduct(t, "茶针", 900)
	_, err = env.cartService.AddItem(ctx, cart, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, env.userService.AdminDeleteUser(ctx, admin, disposable.ID))

	_, err = env.users.GetUserByID(ctx, disposable.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	var itemCount int64
	require.NoError(t, env.db.Model(&model.CartItem{}).Where("cart_id = ?", cart.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}

func TestEnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.userService.EnsureAdmin(ctx, "root@example.com", "superheslo")
	require.NoError(t, err)
	assert.True(t, created.IsAdmin)

	// 已存在的账号只提升权限，不重建
	again, err := env.userService.EnsureAdmin(ctx, "root@example.com", "jine")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.True(t, again.IsAdmin)
}
