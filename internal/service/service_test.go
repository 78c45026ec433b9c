package service

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ondrejklvac/eshop/config"
	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/dao/mysql"
	"github.com/ondrejklvac/eshop/internal/model"
	"github.com/ondrejklvac/eshop/internal/session"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB 每个测试用独立的内存数据库
// 连接数限制为1，避免连接池拿到不同的内存实例
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, mysql.Migrate(db))
	return db
}

type testEnv struct {
	db       *gorm.DB
	users    *dao.UserDao
	products *dao.ProductDao
	shipping *dao.ShippingDao
	carts    *dao.CartDao
	orders   *dao.OrderDao

	userService     *UserService
	catalogService  *CatalogService
	cartService     *CartService
	checkoutService *CheckoutService
	orderService    *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	env := &testEnv{
		db:       db,
		users:    dao.NewUserDao(db),
		products: dao.NewProductDao(db, nil, 0),
		shipping: dao.NewShippingDao(db),
		carts:    dao.NewCartDao(db),
		orders:   dao.NewOrderDao(db),
	}
	env.userService = NewUserService(env.users)
	env.catalogService = NewCatalogService(env.products, env.shipping)
	env.cartService = NewCartService(env.carts, env.products)
	env.checkoutService = NewCheckoutService(db, env.carts, env.shipping)
	env.orderService = NewOrderService(env.orders)
	return env
}

// newTestSession 无HTTP依赖的会话实例
func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	manager := session.NewManager(&config.SessionConfig{
		Secret: "test-secret",
		Name:   "test_session",
		MaxAge: 3600,
	})
	return manager.Get(httptest.NewRequest("GET", "/", nil))
}

func (env *testEnv) createUser(t *testing.T, email string, credits int64) *model.User {
	t.Helper()
	user := &model.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Address:   "Testovací 1, Praha",
		Credits:   credits,
	}
	require.NoError(t, env.users.CreateUser(context.Background(), user))
	return user
}

func (env *testEnv) createProduct(t *testing.T, name string, price int64) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:        name,
		Description: name,
		Price:       price,
		IsActive:    true,
	}
	require.NoError(t, env.products.CreateProduct(context.Background(), product))
	return product
}

func (env *testEnv) createShipping(t *testing.T, name string, price int64) *model.Shipping {
	t.Helper()
	shipping := &model.Shipping{
		Name:   name,
		Price:  price,
		Active: true,
	}
	require.NoError(t, env.shipping.CreateShipping(context.Background(), shipping))
	return shipping
}

func (env *testEnv) userCart(t *testing.T, user *model.User) *model.Cart {
	t.Helper()
	cart, err := env.cartService.GetOrCreateCart(context.Background(), CartOwner{UserID: &user.ID})
	require.NoError(t, err)
	return cart
}

func (env *testEnv) reloadUser(t *testing.T, id int64) *model.User {
	t.Helper()
	user, err := env.users.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return user
}
