package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Mode         string `yaml:"mode"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"`
}

type Logger struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
}

// MySQLConfig 数据库配置
type MySQLConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	MaxOpenConns int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
}

// RedisConfig Redis配置（商品目录缓存）
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 商品缓存TTL（秒），0表示不启用缓存
	CacheTTL int `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

type Database struct {
	Mysql MySQLConfig `yaml:"mysql"`
	Redis RedisConfig `yaml:"redis"`
}

// SessionConfig Cookie会话配置
type SessionConfig struct {
	Secret string `yaml:"secret"`
	Name   string `yaml:"name"`
	// 会话有效期（秒）
	MaxAge int  `yaml:"max_age" mapstructure:"max_age"`
	Secure bool `yaml:"secure"`
}

// MQConfig RabbitMQ配置（订单事件发布）
type MQConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	ChannelPoolSize int    `yaml:"channel_pool_size" mapstructure:"channel_pool_size"`
}

// RateLimitRule 单个限流规则
type RateLimitRule struct {
	RPS   int `yaml:"rps" mapstructure:"rps"`
	Burst int `yaml:"burst" mapstructure:"burst"`
}

// RateLimitsConfig 多路由限流配置
type RateLimitsConfig struct {
	Global   RateLimitRule `yaml:"global" mapstructure:"global"`
	Checkout RateLimitRule `yaml:"checkout" mapstructure:"checkout"`
}

// Config 总配置结构体，嵌套所有子配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   Database         `yaml:"database"`
	Session    SessionConfig    `yaml:"session"`
	Logger     Logger           `yaml:"log" mapstructure:"log"`
	MQ         MQConfig         `yaml:"mq"`
	RateLimits RateLimitsConfig `yaml:"rate_limits" mapstructure:"rate_limits"`
}

var globalConfig Config

// InitConfig 从指定路径加载配置
func InitConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败:%v", err)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败:%v", err)
	}

	applyDefaults(&globalConfig)

	return &globalConfig, nil
}

// LoadConfig 加载配置文件并返回配置对象
// 这个函数简化了配置加载过程，默认加载config.yaml
func LoadConfig() (*Config, error) {
	cfg, err := InitConfig("config/config.yaml")
	if err != nil {
		// 尝试从cmd目录启动的情况
		cfg, err = InitConfig("../../config/config.yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %v", err)
		}
	}

	return cfg, nil
}

// applyDefaults 补充默认配置避免零值导致意外行为
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.RateLimits.Global.RPS == 0 {
		cfg.RateLimits.Global.RPS = 200
	}
	if cfg.RateLimits.Global.Burst == 0 {
		cfg.RateLimits.Global.Burst = 400
	}
	if cfg.RateLimits.Checkout.RPS == 0 {
		cfg.RateLimits.Checkout.RPS = 20
	}
	if cfg.RateLimits.Checkout.Burst == 0 {
		cfg.RateLimits.Checkout.Burst = 40
	}
	if cfg.Session.Name == "" {
		cfg.Session.Name = "eshop_session"
	}
	if cfg.Session.MaxAge <= 0 {
		// 默认7天
		cfg.Session.MaxAge = 7 * 24 * 3600
	}
	if cfg.MQ.ChannelPoolSize <= 0 {
		cfg.MQ.ChannelPoolSize = 4
	}
}
