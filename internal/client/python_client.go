// Package client 预测服务（Python 模型服务）的 HTTP 客户端
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-forecast-dashboard/internal/cache"
	"stock-forecast-dashboard/internal/model"
	"stock-forecast-dashboard/internal/util"
)

var (
	// ErrNetwork 服务不可达或返回非 2xx
	ErrNetwork = errors.New("forecast service unavailable")
	// ErrMalformedResponse 响应无法解析或缺少字段
	ErrMalformedResponse = errors.New("malformed forecast response")
)

// Options 客户端参数
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Cache      cache.Provider // 为 nil 时不缓存
	CacheTTL   time.Duration
	Logger     *slog.Logger
}

// Client 预测服务客户端
type Client struct {
	baseURL    string
	http       *http.Client
	retries    int
	retryDelay time.Duration
	cache      cache.Provider
	cacheTTL   time.Duration
	log        *slog.Logger
}

// New 创建客户端
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		log:        logger,
	}
}

// Models 获取模型列表 GET /models
func (c *Client) Models(ctx context.Context) ([]model.ModelInfo, error) {
	var models []model.ModelInfo
	if err := c.do(ctx, http.MethodGet, "/models", nil, &models); err != nil {
		return nil, err
	}
	for i, m := range models {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: model %d has no name", ErrMalformedResponse, i)
		}
	}
	return models, nil
}

// Historical 获取历史收盘价 GET /historical/{model}/{stock}?days=N
func (c *Client) Historical(ctx context.Context, modelName, stock string, days int) ([]model.HistoricalPoint, error) {
	path := fmt.Sprintf("/historical/%s/%s?days=%d", url.PathEscape(modelName), url.PathEscape(stock), days)
	var resp struct {
		Stock string                   `json:"stock"`
		Data  *[]model.HistoricalPoint `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: historical %s missing data", ErrMalformedResponse, stock)
	}
	return *resp.Data, nil
}

// Predict 获取单只股票的预测 POST /predict，只取第一条结果
func (c *Client) Predict(ctx context.Context, modelName, stock string, days int) (*model.StockPrediction, error) {
	req := model.PredictRequest{
		ModelName: modelName,
		Stocks:    []string{stock},
		Days:      days,
	}
	var resp model.PredictResponse
	if err := c.do(ctx, http.MethodPost, "/predict", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("%w: empty predictions for %s", ErrMalformedResponse, stock)
	}

	return &resp.Predictions[0], nil
}

// Cycle 并发拉取历史数据与预测结果，两者都成功才返回。
// 缓存以整对为单位读写，不会拼出来自不同时刻的历史与预测。
func (c *Client) Cycle(ctx context.Context, modelName, stock string, historyDays, predictDays int) (*model.ForecastCycle, error) {
	key := fmt.Sprintf("cycle:%s:%s:%d:%d", modelName, stock, historyDays, predictDays)
	var cached model.ForecastCycle
	if c.cached(ctx, key, &cached) {
		return &cached, nil
	}

	var result model.ForecastCycle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := c.Historical(gctx, modelName, stock, historyDays)
		if err != nil {
			return fmt.Errorf("historical %s: %w", stock, err)
		}
		result.History = h
		return nil
	})
	g.Go(func() error {
		p, err := c.Predict(gctx, modelName, stock, predictDays)
		if err != nil {
			return fmt.Errorf("predict %s: %w", stock, err)
		}
		result.Prediction = *p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.store(ctx, key, result)
	return &result, nil
}

func (c *Client) cached(ctx context.Context, key string, dest any) bool {
	if c.cache == nil {
		return false
	}
	err := c.cache.Get(ctx, key, dest)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		c.log.Warn("读取缓存失败", "key", key, "error", err)
	}
	return err == nil
}

func (c *Client) store(ctx context.Context, key string, value any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value, c.cacheTTL); err != nil {
		c.log.Warn("写入缓存失败", "key", key, "error", err)
	}
}

// do 发送请求并解析 JSON，网络错误按配置重试
func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	retryable := func(err error) bool { return errors.Is(err, ErrNetwork) }
	return util.Retry(ctx, c.retries+1, c.retryDelay, retryable, func() error {
		data, err := c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
		}
		return nil
	})
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrNetwork, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrNetwork, method, path, resp.StatusCode)
	}
	return data, nil
}
