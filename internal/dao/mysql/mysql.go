package mysql

import (
	"fmt"

	"github.com/ondrejklvac/eshop/config"
	"github.com/ondrejklvac/eshop/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	db *gorm.DB
)

func InitDB(cfg *config.MySQLConfig) (*gorm.DB, error) {

	// 1. 构造DSN数据源字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)
	// 这里不声明err 下面:=会创建局部变量db 不赋值给全局变量
	var err error
	db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %v", err)
	}

	// 建表
	if err := Migrate(db); err != nil {
		return nil, err
	}

	// 获取原生sql.DB对象
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取原生DB失败: %v", err)
	}

	// 设置连接池参数（从配置读取）
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	return db, nil
}

// Migrate 迁移所有业务表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Shipping{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	)
}

func GetDB() *gorm.DB {
	return db
}
