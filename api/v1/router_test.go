package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/ondrejklvac/eshop/api/middleware"
	"github.com/ondrejklvac/eshop/config"
	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/dao/mysql"
	"github.com/ondrejklvac/eshop/internal/model"
	"github.com/ondrejklvac/eshop/internal/service"
	"github.com/ondrejklvac/eshop/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	srv    *httptest.Server
	client *http.Client
	db     *gorm.DB
	users  *dao.UserDao
}

// newTestServer 起一个与生产装配一致的HTTP服务，省去限流与缓存
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, mysql.Migrate(db))

	sessionManager := session.NewManager(&config.SessionConfig{
		Secret: "test-secret-32-bytes-long-enough",
		Name:   "eshop_session",
		MaxAge: 3600,
	})

	userDao := dao.NewUserDao(db)
	productDao := dao.NewProductDao(db, nil, 0)
	shippingDao := dao.NewShippingDao(db)
	cartDao := dao.NewCartDao(db)
	orderDao := dao.NewOrderDao(db)

	userService := service.NewUserService(userDao)
	catalogService := service.NewCatalogService(productDao, shippingDao)
	cartService := service.NewCartService(cartDao, productDao)
	checkoutService := service.NewCheckoutService(db, cartDao, shippingDao)
	orderService := service.NewOrderService(orderDao)

	r := gin.New()
	r.Use(middleware.SessionMiddleware(sessionManager, userDao))

	authHandler := NewAuthHandler(userService)
	productHandler := NewProductHandler(catalogService)
	cartHandler := NewCartHandler(cartService, checkoutService)
	checkoutHandler := NewCheckoutHandler(checkoutService, orderService)
	orderHandler := NewOrderHandler(orderService)
	shippingHandler := NewShippingHandler(catalogService)
	userHandler := NewUserHandler(userService)

	root := r.Group("")
	productHandler.RegisterRoutes(root)

	protected := root.Group("")
	protected.Use(middleware.LoginRequired())
	authHandler.RegisterRoutes(root, protected)
	cartHandler.RegisterRoutes(root, protected)
	orderHandler.RegisterRoutes(protected)
	checkoutHandler.RegisterRoutes(protected)

	admin := root.Group("/admin")
	admin.Use(middleware.LoginRequired())
	admin.Use(middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(admin)
	shippingHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	userHandler.RegisterAdminRoutes(admin)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testServer{
		srv:    srv,
		client: &http.Client{Jar: jar},
		db:     db,
		users:  userDao,
	}
}

func (ts *testServer) get(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := ts.client.Get(ts.srv.URL + path)
	require.NoError(t, err)
	return decodeBody(t, resp)
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values) (int, map[string]interface{}) {
	t.Helper()
	resp, err := ts.client.PostForm(ts.srv.URL+path, form)
	require.NoError(t, err)
	return decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) (int, map[string]interface{}) {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func (ts *testServer) seedProduct(t *testing.T, name string, price int64) *model.Product {
	t.Helper()
	product := &model.Product{Name: name, Description: name, Price: price, IsActive: true}
	require.NoError(t, ts.db.Create(product).Error)
	return product
}

func (ts *testServer) seedShipping(t *testing.T, name string, price int64) *model.Shipping {
	t.Helper()
	shipping := &model.Shipping{Name: name, Price: price, Active: true}
	require.NoError(t, ts.db.Create(shipping).Error)
	return shipping
}

func (ts *testServer) register(t *testing.T, email, password string) {
	t.Helper()
	status, _ := ts.postForm(t, "/register", url.Values{
		"first_name": {"Test"},
		"last_name":  {"User"},
		"email":      {email},
		"password":   {password},
	})
	require.Equal(t, http.StatusOK, status)
}

func (ts *testServer) login(t *testing.T, email, password string) {
	t.Helper()
	status, _ := ts.postForm(t, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, status)
}

// 匿名访客可以浏览商品并维护购物车，登录类接口返回401
func TestAnonymousCartFlow(t *testing.T) {
	ts := newTestServer(t)
	product := ts.seedProduct(t, "茶壶", 10000)

	status, body := ts.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])

	status, _ = ts.postForm(t, "/add_to_cart/"+strconv.FormatInt(product.ID, 10),
		url.Values{"quantity": {"2"}})
	require.Equal(t, http.StatusOK, status)

	// 同商品再次加入合并为一条
	status, _ = ts.postForm(t, "/add_to_cart/"+strconv.FormatInt(product.ID, 10), nil)
	require.Equal(t, http.StatusOK, status)

	status, body = ts.get(t, "/cart")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 30000, body["total_price"])
	items, ok := body["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	// 积分申请和结算要求登录
	status, _ = ts.postForm(t, "/apply_credits", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = ts.get(t, "/checkout")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAddUnknownProduct(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.postForm(t, "/add_to_cart/99999", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.postForm(t, "/remove_from_cart/99999", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// 完整下单链路：注册、登录、加车、申请积分、确认下单、查看确认页
func TestCheckoutEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	product := ts.seedProduct(t, "盖碗", 10000)
	ts.seedShipping(t, "快递", 2000)

	ts.register(t, "kupec@example.com", "tajneheslo")
	ts.login(t, "kupec@example.com", "tajneheslo")

	// 给账号充积分
	require.NoError(t, ts.db.Model(&model.User{}).
		Where("email = ?", "kupec@example.com").
		Update("credits", 50000).Error)

	status, _ := ts.postForm(t, "/add_to_cart/"+strconv.FormatInt(product.ID, 10),
		url.Values{"quantity": {"2"}})
	require.Equal(t, http.StatusOK, status)

	status, body := ts.postForm(t, "/checkout", url.Values{
		"shipping_address": {"Dlouhá 12, Praha"},
		"note":             {"工作日送达"},
		"apply_credits":    {"1"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 22000, body["applied_credits"])

	status, body = ts.postForm(t, "/checkout", url.Values{"confirm_order": {"1"}})
	require.Equal(t, http.StatusOK, status)
	orderID := int64(body["order_id"].(float64))
	require.Greater(t, orderID, int64(0))

	status, body = ts.get(t, "/order_confirmation/"+strconv.FormatInt(orderID, 10))
	require.Equal(t, http.StatusOK, status)
	order, ok := body["order"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 22000, order["total_price"])
	assert.EqualValues(t, 22000, order["credits_used"])
	assert.EqualValues(t, 0, order["final_price"])
	assert.Equal(t, "Dlouhá 12, Praha", order["shipping_address"])

	// 空车再确认直接报错
	status, _ = ts.postForm(t, "/checkout", url.Values{"confirm_order": {"1"}})
	assert.Equal(t, http.StatusBadRequest, status)
}

// 订单确认页对非归属人返回403
func TestOrderConfirmationForbiddenForStranger(t *testing.T) {
	ts := newTestServer(t)
	product := ts.seedProduct(t, "杯子", 5000)

	ts.register(t, "majitel@example.com", "tajneheslo")
	ts.login(t, "majitel@example.com", "tajneheslo")
	status, _ := ts.postForm(t, "/add_to_cart/"+strconv.FormatInt(product.ID, 10), nil)
	require.Equal(t, http.StatusOK, status)
	status, body := ts.postForm(t, "/checkout", url.Values{"confirm_order": {"1"}})
	require.Equal(t, http.StatusOK, status)
	orderID := int64(body["order_id"].(float64))

	// 换一个账号（同一服务，新cookie罐）
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	ts.client = &http.Client{Jar: jar}
	ts.register(t, "cizi@example.com", "tajneheslo")
	ts.login(t, "cizi@example.com", "tajneheslo")

	status, _ = ts.get(t, "/order_confirmation/"+strconv.FormatInt(orderID, 10))
	assert.Equal(t, http.StatusForbidden, status)
}

// 后台路由：匿名401，普通用户403，管理员放行
func TestAdminRouteGuards(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.get(t, "/admin/users")
	assert.Equal(t, http.StatusUnauthorized, status)

	ts.register(t, "radovy@example.com", "tajneheslo")
	ts.login(t, "radovy@example.com", "tajneheslo")
	status, _ = ts.get(t, "/admin/users")
	assert.Equal(t, http.StatusForbidden, status)

	// 提升为管理员后可访问
	require.NoError(t, ts.users.UpdateUser(context.Background(),
		ts.mustUserID(t, "radovy@example.com"), map[string]interface{}{"is_admin": true}))
	status, body := ts.get(t, "/admin/users")
	require.Equal(t, http.StatusOK, status)
	users, ok := body["users"].([]interface{})
	require.True(t, ok)
	assert.Len(t, users, 1)
}

func (ts *testServer) mustUserID(t *testing.T, email string) int64 {
	t.Helper()
	user, err := ts.users.GetUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.ID
}
