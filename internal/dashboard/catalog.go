package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"stock-forecast-dashboard/internal/forecast"
	"stock-forecast-dashboard/internal/model"
)

// Catalog 所有会话共享的可选股票列表
type Catalog struct {
	fetcher Fetcher
	log     *slog.Logger

	mu          sync.RWMutex
	instruments []model.Instrument
	loaded      bool
}

// NewCatalog 创建股票目录
func NewCatalog(fetcher Fetcher, log *slog.Logger) *Catalog {
	return &Catalog{fetcher: fetcher, log: log}
}

// Refresh 重新拉取模型列表，失败时保留原列表
func (c *Catalog) Refresh(ctx context.Context) error {
	models, err := c.fetcher.Models(ctx)
	if err != nil {
		c.log.Error("获取模型列表失败", "error", err)
		return err
	}

	instruments := forecast.BuildCatalog(models)

	c.mu.Lock()
	c.instruments = instruments
	c.loaded = true
	c.mu.Unlock()

	c.log.Info("股票目录已更新", "models", len(models), "instruments", len(instruments))
	return nil
}

// Loaded 是否成功加载过
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// List 返回股票列表副本
func (c *Catalog) List() []model.Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Instrument(nil), c.instruments...)
}

// Lookup 按名称查找股票
func (c *Catalog) Lookup(name string) (model.Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, inst := range c.instruments {
		if inst.Name == name {
			return inst, true
		}
	}
	return model.Instrument{}, false
}
