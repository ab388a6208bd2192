package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/slotmail/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Log            LogConfig            `mapstructure:"log"`
	Database       DatabaseConfig       `mapstructure:"database"`
	UserJWT        JWTConfig            `mapstructure:"user_jwt"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Queue          QueueConfig          `mapstructure:"queue"`
	Storage        StorageConfig        `mapstructure:"storage"`
	Upload         UploadConfig         `mapstructure:"upload"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Security       SecurityConfig       `mapstructure:"security"`
	Booking        BookingConfig        `mapstructure:"booking"`
	PaymentWebhook PaymentWebhookConfig `mapstructure:"payment_webhook"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	// TimeoutMS 连接与读写超时；限流与回收租约都在请求路径上，需要快速失败
	TimeoutMS int `mapstructure:"timeout_ms"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// StorageConfig 设计稿文件存储配置
type StorageConfig struct {
	Driver string             `mapstructure:"driver"` // local / minio
	Local  LocalStorageConfig `mapstructure:"local"`
	Minio  MinioStorageConfig `mapstructure:"minio"`
}

// LocalStorageConfig 本地磁盘存储
type LocalStorageConfig struct {
	Root      string `mapstructure:"root"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// MinioStorageConfig MinIO / S3 兼容存储
type MinioStorageConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	Secure     bool   `mapstructure:"secure"`
}

// UploadConfig 文件上传配置
type UploadConfig struct {
	MaxSize           int64    `mapstructure:"max_size"`
	AllowedTypes      []string `mapstructure:"allowed_types"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxWidth          int      `mapstructure:"max_width"`
	MaxHeight         int      `mapstructure:"max_height"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	BookingRateLimit RateLimitConfig `mapstructure:"booking_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// BookingConfig 预订、定价与回收相关配置（金额单位：分）
type BookingConfig struct {
	PendingTimeoutMinutes    int    `mapstructure:"pending_timeout_minutes"`
	ReaperIntervalSeconds    int    `mapstructure:"reaper_interval_seconds"`
	ReaperIOTimeoutSeconds   int    `mapstructure:"reaper_io_timeout_seconds"`
	ReaperBatchSize          int    `mapstructure:"reaper_batch_size"`
	ReaperLeaseEnabled       bool   `mapstructure:"reaper_lease_enabled"`
	FirstSlotPriceCents      int64  `mapstructure:"first_slot_price_cents"`
	AdditionalSlotPriceCents int64  `mapstructure:"additional_slot_price_cents"`
	LoyaltyDiscountCents     int64  `mapstructure:"loyalty_discount_cents"`
	LoyaltyThresholdSlots    int    `mapstructure:"loyalty_threshold_slots"`
	RefundCutoffDays         int    `mapstructure:"refund_cutoff_days"`
	RefundProcessingFeeCents int64  `mapstructure:"refund_processing_fee_cents"`
	Currency                 string `mapstructure:"currency"`
	NotificationWindowDays   int    `mapstructure:"notification_window_days"`
}

// PendingTimeout 未支付预订的保留时长
func (c BookingConfig) PendingTimeout() time.Duration {
	if c.PendingTimeoutMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.PendingTimeoutMinutes) * time.Minute
}

// ReaperInterval 回收任务执行间隔
func (c BookingConfig) ReaperInterval() time.Duration {
	if c.ReaperIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.ReaperIntervalSeconds) * time.Second
}

// ReaperIOTimeout 回收任务单次存储调用超时
func (c BookingConfig) ReaperIOTimeout() time.Duration {
	if c.ReaperIOTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ReaperIOTimeoutSeconds) * time.Second
}

// PaymentWebhookConfig 支付网关回调配置
type PaymentWebhookConfig struct {
	Secret string `mapstructure:"secret"`
}

// MetricsConfig 指标暴露配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")   // 从 cmd/server 运行
	v.AddConfigPath("./etc") // etc 文件夹

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // booking.pending_timeout_minutes -> BOOKING_PENDING_TIMEOUT_MINUTES

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return &cfg
}

// Default 返回仅包含默认值的配置，测试与种子脚本使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("默认配置解析失败: %w", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/slotmail.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("user_jwt.secret", "user-change-me-in-production")
	v.SetDefault("user_jwt.expire_hours", 24)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sm")
	v.SetDefault("redis.timeout_ms", 500)
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.root", "./uploads")
	v.SetDefault("storage.local.url_prefix", "/uploads")
	v.SetDefault("storage.minio.bucket_name", "slotmail-artwork")
	v.SetDefault("upload.max_size", 20971520)
	v.SetDefault("upload.allowed_types", []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"application/pdf",
	})
	v.SetDefault("upload.allowed_extensions", []string{".jpg", ".jpeg", ".png", ".gif", ".pdf"})
	v.SetDefault("upload.max_width", 12000)
	v.SetDefault("upload.max_height", 12000)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Authorization",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.booking_rate_limit.window_seconds", 60)
	v.SetDefault("security.booking_rate_limit.max_requests", 10)
	v.SetDefault("booking.pending_timeout_minutes", 15)
	v.SetDefault("booking.reaper_interval_seconds", 60)
	v.SetDefault("booking.reaper_io_timeout_seconds", 10)
	v.SetDefault("booking.reaper_batch_size", 200)
	v.SetDefault("booking.reaper_lease_enabled", true)
	v.SetDefault("booking.first_slot_price_cents", 60000)
	v.SetDefault("booking.additional_slot_price_cents", 50000)
	v.SetDefault("booking.loyalty_discount_cents", 15000)
	v.SetDefault("booking.loyalty_threshold_slots", 3)
	v.SetDefault("booking.refund_cutoff_days", 7)
	v.SetDefault("booking.refund_processing_fee_cents", 2500)
	v.SetDefault("booking.currency", "USD")
	v.SetDefault("booking.notification_window_days", 14)
	v.SetDefault("payment_webhook.secret", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
