// Package dashboard 管理单个会话的选股状态：并发拉取历史与预测数据，
// 生成图表、表格与价格摘要，并丢弃已被新选择取代的结果。
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stock-forecast-dashboard/internal/forecast"
	"stock-forecast-dashboard/internal/model"
)

var (
	// ErrStaleSelection 拉取完成时选择已变更，结果被丢弃
	ErrStaleSelection = errors.New("stale selection")
	// ErrUnknownInstrument 目录中不存在该股票
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// Fetcher 预测服务接口，由 client.Client 实现
type Fetcher interface {
	Models(ctx context.Context) ([]model.ModelInfo, error)
	Cycle(ctx context.Context, modelName, stock string, historyDays, predictDays int) (*model.ForecastCycle, error)
}

// Options 拉取天数与展示窗口
type Options struct {
	HistoricalDays int
	PredictDays    int
	ChartWindow    int
	LedgerWindow   int
}

// State 控制器状态
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Selection 当前选择。Seq 每次选择递增，同一只股票再次选择也是不同的值
type Selection struct {
	Instrument model.Instrument
	Seq        uint64
}

// Snapshot 提供给前端的只读视图
type Snapshot struct {
	Selection *model.Instrument   `json:"selection"`
	DataFor   *model.Instrument   `json:"dataFor"`
	State     State               `json:"state"`
	Stale     bool                `json:"stale"`
	Chart     []model.ChartPoint  `json:"chart"`
	Ledger    []model.LedgerRow   `json:"ledger"`
	Summary   *model.PriceSummary `json:"summary"`
	Error     string              `json:"error,omitempty"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// Controller 单个会话的控制器
type Controller struct {
	fetcher Fetcher
	catalog *Catalog
	opts    Options
	log     *slog.Logger

	mu        sync.Mutex
	seq       uint64
	selection Selection
	selected  bool
	cancel    context.CancelFunc
	state     State
	closed    bool

	dataFor   *model.Instrument
	chart     []model.ChartPoint
	ledger    []model.LedgerRow
	summary   *model.PriceSummary
	lastErr   error
	updatedAt time.Time

	subs    map[int]chan Snapshot
	nextSub int
}

// NewController 创建控制器
func NewController(fetcher Fetcher, catalog *Catalog, opts Options, log *slog.Logger) *Controller {
	return &Controller{
		fetcher: fetcher,
		catalog: catalog,
		opts:    opts,
		log:     log,
		state:   StateIdle,
		subs:    make(map[int]chan Snapshot),
	}
}

// Instruments 可选股票列表
func (c *Controller) Instruments() []model.Instrument {
	return c.catalog.List()
}

// Start 目录未加载时先加载，并在尚未选择时自动选中第一只股票。
// 返回的 channel 在首次拉取结束后关闭；已有选择、已关闭或没有可选股票时为 nil。
// 并发调用只会发起一次拉取。
func (c *Controller) Start(ctx context.Context) (<-chan struct{}, error) {
	if !c.catalog.Loaded() {
		if err := c.catalog.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected || c.closed {
		return nil, nil
	}
	instruments := c.catalog.List()
	if len(instruments) == 0 {
		return nil, nil
	}
	return c.selectLocked(ctx, instruments[0]), nil
}

// SelectByName 按名称选择股票
func (c *Controller) SelectByName(ctx context.Context, name string) (<-chan struct{}, error) {
	inst, ok := c.catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstrument, name)
	}
	return c.Select(ctx, inst), nil
}

// Select 切换选择并开始新一轮拉取，取消上一轮未完成的请求。
// 拉取不随 ctx 取消（通常是 HTTP 请求的 ctx），只会被下一次选择或 Close 取消。
// 返回的 channel 在本轮结束（提交、失败或被丢弃）后关闭；Close 之后调用不做任何事。
func (c *Controller) Select(ctx context.Context, inst model.Instrument) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectLocked(ctx, inst)
}

func (c *Controller) selectLocked(ctx context.Context, inst model.Instrument) <-chan struct{} {
	done := make(chan struct{})
	if c.closed {
		close(done)
		return done
	}

	cycleCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	sel := Selection{Instrument: inst, Seq: c.seq}
	c.selection = sel
	c.selected = true
	c.cancel = cancel
	c.state = StateLoading
	c.publishLocked()

	c.log.Info("选择股票", "stock", inst.Name, "model", inst.ModelName, "seq", sel.Seq)

	go func() {
		defer close(done)
		defer cancel()
		c.load(cycleCtx, sel)
	}()
	return done
}

// load 拉取历史与预测数据，两者都成功才提交
func (c *Controller) load(ctx context.Context, sel Selection) {
	inst := sel.Instrument
	cycle, err := c.fetcher.Cycle(ctx, inst.ModelName, inst.Name, c.opts.HistoricalDays, c.opts.PredictDays)

	var (
		chart   []model.ChartPoint
		ledger  []model.LedgerRow
		summary model.PriceSummary
	)
	if err == nil {
		predictions := cycle.Prediction.Predictions
		chart = forecast.MergeTimeline(cycle.History, c.opts.ChartWindow, predictions)
		var ledgerErr error
		ledger, ledgerErr = forecast.BuildLedger(cycle.History, c.opts.LedgerWindow, predictions)
		if ledgerErr != nil {
			c.log.Warn("表格存在无效价格，已剔除对应行", "stock", inst.Name, "error", ledgerErr)
		}
		summary = forecast.Summarize(inst.Name, cycle.Prediction)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.selection != sel {
		c.log.Debug("丢弃过期结果", "stock", inst.Name, "seq", sel.Seq, "error", ErrStaleSelection)
		return
	}

	c.state = StateReady
	if err != nil {
		c.lastErr = err
		c.log.Error("拉取数据失败，保留上次结果", "stock", inst.Name, "error", err)
		c.publishLocked()
		return
	}

	c.dataFor = &inst
	c.chart = chart
	c.ledger = ledger
	c.summary = &summary
	c.lastErr = nil
	c.updatedAt = time.Now()
	c.log.Info("数据已更新", "stock", inst.Name, "chart", len(chart), "ledger", len(ledger))
	c.publishLocked()
}

// Selection 当前选择
func (c *Controller) Selection() (Selection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection, c.selected
}

// Snapshot 当前状态快照
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		DataFor:   c.dataFor,
		State:     c.state,
		Chart:     c.chart,
		Ledger:    c.ledger,
		Summary:   c.summary,
		UpdatedAt: c.updatedAt,
	}
	if s.Chart == nil {
		s.Chart = []model.ChartPoint{}
	}
	if s.Ledger == nil {
		s.Ledger = []model.LedgerRow{}
	}
	if c.selected {
		inst := c.selection.Instrument
		s.Selection = &inst
		s.Stale = c.dataFor != nil && *c.dataFor != inst
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}
	return s
}

// Subscribe 订阅快照变更，慢速订阅者只会收到最新一次。
// 控制器已关闭时返回已关闭的 channel。
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
}

func (c *Controller) publishLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Subscribers 当前订阅数
func (c *Controller) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Closed 控制器是否已关闭
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close 取消未完成的拉取并关闭所有订阅，之后的选择与订阅均无效
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}
