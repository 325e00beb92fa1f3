// Package scheduler 定时任务：刷新股票目录、清理过期会话
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// CatalogRefresher 可刷新的股票目录
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// SessionCleaner 可清理过期会话的会话表
type SessionCleaner interface {
	Cleanup() int
}

// CacheSweeper 需要主动清理过期条目的缓存（Redis 自带过期，不需要）
type CacheSweeper interface {
	Sweep() int
}

// Scheduler cron 任务管理
type Scheduler struct {
	cron     *cron.Cron
	catalog  CatalogRefresher
	sessions SessionCleaner
	cache    CacheSweeper
	timeout  time.Duration
	log      *slog.Logger
	ctx      context.Context
}

// New 创建调度器，cron 表达式包含秒字段。cache 可为 nil
func New(ctx context.Context, catalog CatalogRefresher, sessions SessionCleaner, cache CacheSweeper, timeout time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		catalog:  catalog,
		sessions: sessions,
		cache:    cache,
		timeout:  timeout,
		log:      log,
		ctx:      ctx,
	}
}

// Register 注册目录刷新与清理任务（会话及缓存），表达式为空则跳过该任务
func (s *Scheduler) Register(catalogSpec, cleanupSpec string) error {
	if catalogSpec != "" {
		if _, err := s.cron.AddFunc(catalogSpec, s.RefreshNow); err != nil {
			return fmt.Errorf("catalog refresh schedule %q: %w", catalogSpec, err)
		}
		s.log.Info("股票目录刷新任务已注册", "schedule", catalogSpec)
	}
	if cleanupSpec != "" {
		if _, err := s.cron.AddFunc(cleanupSpec, s.cleanup); err != nil {
			return fmt.Errorf("session cleanup schedule %q: %w", cleanupSpec, err)
		}
		s.log.Info("会话清理任务已注册", "schedule", cleanupSpec)
	}
	return nil
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("定时任务已启动", "jobs", len(s.cron.Entries()))
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("定时任务已停止")
}

// RefreshNow 立即刷新股票目录
func (s *Scheduler) RefreshNow() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.catalog.Refresh(ctx); err != nil {
		s.log.Error("刷新股票目录失败", "error", err)
		return
	}
	s.log.Info("刷新股票目录完成", "elapsed", time.Since(start).Round(time.Millisecond))
}

func (s *Scheduler) cleanup() {
	s.sessions.Cleanup()
	if s.cache != nil {
		if n := s.cache.Sweep(); n > 0 {
			s.log.Debug("清理过期缓存", "count", n)
		}
	}
}
