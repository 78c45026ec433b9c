package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ondrejklvac/eshop/pkg/app"
	"github.com/ondrejklvac/eshop/pkg/logger"
	"github.com/gin-gonic/gin"

	"github.com/ondrejklvac/eshop/api/middleware"
	v1 "github.com/ondrejklvac/eshop/api/v1"
	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/dao/mysql"
	rdb "github.com/ondrejklvac/eshop/internal/dao/redis"
	"github.com/ondrejklvac/eshop/internal/mq"
	"github.com/ondrejklvac/eshop/internal/service"
	"github.com/ondrejklvac/eshop/internal/session"
	"golang.org/x/time/rate"
)

func main() {
	// 加载配置
	cfg := app.BootstrapApp()

	// 设置Gin模式
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	// 初始化MySQL
	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Error("Failed to init database", "err", err)
		return
	}

	// 初始化Redis（商品缓存，连不上时降级为直查数据库）
	redisClient, err := rdb.InitRedis(&cfg.Database.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, product cache disabled", "err", err)
		redisClient = nil
	}

	// 初始化MQ生产者池（可选）
	var mqPool *mq.Pool
	if cfg.MQ.Enabled {
		mqPool, err = mq.Init(&cfg.MQ)
		if err != nil {
			logger.Warn("MQ unavailable, order events disabled", "err", err)
			mqPool = nil
		} else {
			defer mqPool.Close()
			if err := mqPool.EnsureBaseTopology(); err != nil {
				logger.Warn("MQ topology setup failed", "err", err)
			}
		}
	}

	// 会话存储
	sessionManager := session.NewManager(&cfg.Session)

	// DAO层
	userDao := dao.NewUserDao(db)
	productDao := dao.NewProductDao(db, redisClient, time.Duration(cfg.Database.Redis.CacheTTL)*time.Second)
	shippingDao := dao.NewShippingDao(db)
	cartDao := dao.NewCartDao(db)
	orderDao := dao.NewOrderDao(db)

	// 服务层
	userService := service.NewUserService(userDao)
	catalogService := service.NewCatalogService(productDao, shippingDao)
	cartService := service.NewCartService(cartDao, productDao)
	checkoutService := service.NewCheckoutServiceWithMQ(db, cartDao, shippingDao, mqPool)
	orderService := service.NewOrderService(orderDao)

	// 初始化Gin引擎
	r := gin.Default()

	// 全局限流中间件
	r.Use(middleware.RateLimitMiddleware(
		rate.Limit(cfg.RateLimits.Global.RPS), cfg.RateLimits.Global.Burst))
	// 会话与登录态解析
	r.Use(middleware.SessionMiddleware(sessionManager, userDao))

	// 健康检查接口
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "eshop is running",
		})
	})

	// 创建处理器实例
	authHandler := v1.NewAuthHandler(userService)
	productHandler := v1.NewProductHandler(catalogService)
	cartHandler := v1.NewCartHandler(cartService, checkoutService)
	checkoutHandler := v1.NewCheckoutHandler(checkoutService, orderService)
	orderHandler := v1.NewOrderHandler(orderService)
	shippingHandler := v1.NewShippingHandler(catalogService)
	userHandler := v1.NewUserHandler(userService)

	root := r.Group("")
	{
		// 公开路由：商品浏览、注册登录、匿名购物车
		productHandler.RegisterRoutes(root)

		// 受保护的路由组（需要登录）
		protected := root.Group("")
		protected.Use(middleware.LoginRequired())

		authHandler.RegisterRoutes(root, protected)
		cartHandler.RegisterRoutes(root, protected)
		orderHandler.RegisterRoutes(protected)

		// 结算路由（需要登录 + 更严格的限流）
		checkoutProtected := root.Group("")
		checkoutProtected.Use(middleware.LoginRequired())
		checkoutProtected.Use(middleware.CheckoutRateLimitMiddleware(cfg.RateLimits.Checkout))
		checkoutHandler.RegisterRoutes(checkoutProtected)

		// 后台管理路由（需要登录 + 管理员）
		admin := root.Group("/admin")
		admin.Use(middleware.LoginRequired())
		admin.Use(middleware.AdminRequired())
		productHandler.RegisterAdminRoutes(admin)
		shippingHandler.RegisterAdminRoutes(admin)
		orderHandler.RegisterAdminRoutes(admin)
		userHandler.RegisterAdminRoutes(admin)
	}

	// 启动服务器
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
	logger.Info("eshop starting on " + serverAddr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Failed to start server", "err", err)
	}
}
