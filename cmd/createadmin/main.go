package main

// 初始化管理员账号的命令行工具
// 邮箱已存在时只提升为管理员，不重置密码

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/dao/mysql"
	"github.com/ondrejklvac/eshop/internal/service"
	"github.com/ondrejklvac/eshop/pkg/app"
	"github.com/ondrejklvac/eshop/pkg/logger"
)

func main() {
	email := flag.String("email", "", "管理员邮箱")
	password := flag.String("password", "", "管理员密码（至少6位）")
	flag.Parse()

	if *email == "" || len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "usage: createadmin -email <email> -password <password>")
		os.Exit(1)
	}

	cfg := app.BootstrapApp()

	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Error("Failed to init database", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userService := service.NewUserService(dao.NewUserDao(db))
	admin, err := userService.EnsureAdmin(ctx, *email, *password)
	if err != nil {
		logger.Error("创建管理员失败", "email", *email, "err", err)
		os.Exit(1)
	}

	fmt.Printf("管理员账号就绪: id=%d email=%s\n", admin.ID, admin.Email)
}
