package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"stock-forecast-dashboard/internal/cache"
	"stock-forecast-dashboard/internal/client"
	"stock-forecast-dashboard/internal/config"
	"stock-forecast-dashboard/internal/dashboard"
	"stock-forecast-dashboard/internal/handler"
	"stock-forecast-dashboard/internal/scheduler"
	"stock-forecast-dashboard/internal/service"
	"stock-forecast-dashboard/internal/util"
)

func main() {
	// .env 不存在时使用系统环境变量
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("加载配置失败", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	log := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	// 前端按数字读取价格
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := newCache(ctx, cfg.Cache, log)

	fc := client.New(client.Options{
		BaseURL:    cfg.Forecast.ServiceURL,
		Timeout:    cfg.Forecast.Timeout,
		Retries:    cfg.Forecast.Retries,
		RetryDelay: cfg.Forecast.RetryDelay,
		Cache:      provider,
		CacheTTL:   cfg.Cache.TTL,
		Logger:     log,
	})

	catalog := dashboard.NewCatalog(fc, log)
	if err := catalog.Refresh(ctx); err != nil {
		log.Warn("启动时加载股票目录失败，将在首次请求时重试", "error", err)
	}

	opts := dashboard.Options{
		HistoricalDays: cfg.Forecast.HistoricalDays,
		PredictDays:    cfg.Forecast.PredictDays,
		ChartWindow:    cfg.Forecast.ChartWindow,
		LedgerWindow:   cfg.Forecast.LedgerWindow,
	}
	sessions := service.NewSessionStore(cfg.Session.TTL, func() *dashboard.Controller {
		return dashboard.NewController(fc, catalog, opts, log)
	}, log)

	if cfg.Scheduler.Enabled {
		var sweeper scheduler.CacheSweeper
		if m, ok := provider.(*cache.Memory); ok {
			sweeper = m
		}
		sched := scheduler.New(ctx, catalog, sessions, sweeper, cfg.Forecast.Timeout, log)
		if err := sched.Register(cfg.Scheduler.CatalogRefresh, cfg.Scheduler.SessionCleanup); err != nil {
			log.Error("注册定时任务失败", "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
	} else {
		log.Info("定时任务已禁用")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", handler.SessionHeader},
		ExposeHeaders:    []string{handler.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handler.New(sessions, catalog, log).Register(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info("服务启动", "port", cfg.Server.Port, "forecast_service", cfg.Forecast.ServiceURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("启动服务失败", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("正在关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("关闭服务失败", "error", err)
	}
}

// newCache 优先使用 Redis，连接失败时退回内存缓存
func newCache(ctx context.Context, cfg config.Cache, log *slog.Logger) cache.Provider {
	if !cfg.Enabled {
		log.Info("响应缓存已禁用")
		return nil
	}
	if cfg.RedisAddr == "" {
		log.Info("使用内存缓存")
		return cache.NewMemory()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rdb, err := cache.NewRedis(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix)
	if err != nil {
		log.Warn("Redis 连接失败，使用内存缓存", "error", err)
		return cache.NewMemory()
	}
	log.Info("Redis 连接成功", "addr", cfg.RedisAddr)
	return rdb
}
