package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ondrejklvac/eshop/config"

	"github.com/redis/go-redis/v9"
)

var redisDB *redis.Client

// InitRedis 初始化redis客户端（商品目录缓存）
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	redisDB = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,

		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisDB.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis连通失败: %w", err)
	}
	return redisDB, nil
}

func GetRedisDB() *redis.Client {
	return redisDB
}
