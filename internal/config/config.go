// Package config 加载服务配置：YAML 文件（可选）+ 环境变量覆盖
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 顶层配置
type Config struct {
	Server    Server    `yaml:"server"`
	Forecast  Forecast  `yaml:"forecast"`
	Cache     Cache     `yaml:"cache"`
	Scheduler Scheduler `yaml:"scheduler"`
	Session   Session   `yaml:"session"`
	Logging   Logging   `yaml:"logging"`
}

// Server HTTP 服务配置
type Server struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// Forecast 预测服务及展示窗口配置
type Forecast struct {
	ServiceURL     string        `yaml:"service_url"`
	Timeout        time.Duration `yaml:"timeout"`
	Retries        int           `yaml:"retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	HistoricalDays int           `yaml:"historical_days"` // 请求的历史天数
	PredictDays    int           `yaml:"predict_days"`    // 预测天数
	ChartWindow    int           `yaml:"chart_window"`    // 图表展示的历史点数
	LedgerWindow   int           `yaml:"ledger_window"`   // 表格展示的历史行数
}

// Cache 响应缓存配置，RedisAddr 为空时使用内存缓存
type Cache struct {
	Enabled       bool          `yaml:"enabled"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	KeyPrefix     string        `yaml:"key_prefix"`
}

// Scheduler 定时任务配置（cron 表达式，含秒）
type Scheduler struct {
	Enabled        bool   `yaml:"enabled"`
	CatalogRefresh string `yaml:"catalog_refresh"`
	SessionCleanup string `yaml:"session_cleanup"`
}

// Session 会话配置
type Session struct {
	TTL time.Duration `yaml:"ttl"`
}

// Logging 日志配置
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: Server{
			Port:         "8080",
			AllowOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
		Forecast: Forecast{
			ServiceURL:     "http://127.0.0.1:8000",
			Timeout:        60 * time.Second,
			Retries:        2,
			RetryDelay:     500 * time.Millisecond,
			HistoricalDays: 90,
			PredictDays:    7,
			ChartWindow:    60,
			LedgerWindow:   30,
		},
		Cache: Cache{
			Enabled:   true,
			TTL:       5 * time.Minute,
			KeyPrefix: "forecast:",
		},
		Scheduler: Scheduler{
			Enabled:        true,
			CatalogRefresh: "0 */30 * * * *",
			SessionCleanup: "0 * * * * *",
		},
		Session: Session{
			TTL: 30 * time.Minute,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 读取 YAML 配置并应用环境变量覆盖，文件不存在时使用默认配置
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Port = getEnvString("PORT", cfg.Server.Port)

	cfg.Forecast.ServiceURL = getEnvString("FORECAST_SERVICE_URL", cfg.Forecast.ServiceURL)
	cfg.Forecast.Timeout = getEnvDuration("FORECAST_TIMEOUT", cfg.Forecast.Timeout)
	cfg.Forecast.Retries = getEnvInt("FORECAST_RETRIES", cfg.Forecast.Retries)
	cfg.Forecast.HistoricalDays = getEnvInt("HISTORICAL_DAYS", cfg.Forecast.HistoricalDays)
	cfg.Forecast.PredictDays = getEnvInt("PREDICT_DAYS", cfg.Forecast.PredictDays)
	cfg.Forecast.ChartWindow = getEnvInt("CHART_WINDOW", cfg.Forecast.ChartWindow)
	cfg.Forecast.LedgerWindow = getEnvInt("LEDGER_WINDOW", cfg.Forecast.LedgerWindow)

	cfg.Cache.Enabled = getEnvBool("CACHE_ENABLED", cfg.Cache.Enabled)
	cfg.Cache.TTL = getEnvDuration("CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.RedisAddr = getEnvString("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = getEnvString("REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = getEnvInt("REDIS_DB", cfg.Cache.RedisDB)

	cfg.Scheduler.Enabled = getEnvBool("SCHEDULER_ENABLED", cfg.Scheduler.Enabled)
	cfg.Scheduler.CatalogRefresh = getEnvString("CATALOG_REFRESH_SCHEDULE", cfg.Scheduler.CatalogRefresh)
	cfg.Scheduler.SessionCleanup = getEnvString("SESSION_CLEANUP_SCHEDULE", cfg.Scheduler.SessionCleanup)

	cfg.Session.TTL = getEnvDuration("SESSION_TTL", cfg.Session.TTL)

	cfg.Logging.Level = getEnvString("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnvString("LOG_FORMAT", cfg.Logging.Format)
}

// 辅助函数
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
