package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-forecast-dashboard/internal/dashboard"
)

// SelectRequest 选股请求
type SelectRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetInstruments 获取可选股票列表
func (h *Handler) GetInstruments(c *gin.Context) {
	ctrl := controllerFrom(c)
	if !h.catalog.Loaded() {
		if err := h.catalog.Refresh(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "获取股票列表失败: " + err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": ctrl.Instruments(),
	})
}

// RefreshCatalog 手动刷新股票目录
func (h *Handler) RefreshCatalog(c *gin.Context) {
	if err := h.catalog.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "刷新股票列表失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": h.catalog.List(),
	})
}

// Select 切换股票，立即返回 loading 状态的快照
func (h *Handler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	ctrl := controllerFrom(c)
	if _, err := ctrl.SelectByName(c.Request.Context(), req.Name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dashboard.ErrUnknownInstrument) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, ctrl.Snapshot())
}

// GetDashboard 当前快照，首次访问时自动加载目录并选中第一只股票
func (h *Handler) GetDashboard(c *gin.Context) {
	ctrl, ok := h.started(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// GetChart 图表数据
func (h *Handler) GetChart(c *gin.Context) {
	ctrl, ok := h.started(c)
	if !ok {
		return
	}
	snap := ctrl.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"state": snap.State,
		"stale": snap.Stale,
		"data":  snap.Chart,
	})
}

// GetLedger 表格数据（按展示顺序），附带格式化文本
func (h *Handler) GetLedger(c *gin.Context) {
	ctrl, ok := h.started(c)
	if !ok {
		return
	}
	snap := ctrl.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"state":   snap.State,
		"stale":   snap.Stale,
		"data":    snap.Ledger,
		"display": dashboard.DisplayLedger(snap.Ledger),
	})
}

// GetSummary 当前价格与涨跌
func (h *Handler) GetSummary(c *gin.Context) {
	ctrl, ok := h.started(c)
	if !ok {
		return
	}
	snap := ctrl.Snapshot()
	if snap.Summary == nil {
		c.JSON(http.StatusOK, gin.H{
			"state": snap.State,
			"data":  nil,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":   snap.State,
		"stale":   snap.Stale,
		"data":    snap.Summary,
		"display": dashboard.DisplaySummary(*snap.Summary),
	})
}

// started 确保会话已开始（目录已加载且已有选择）
func (h *Handler) started(c *gin.Context) (*dashboard.Controller, bool) {
	ctrl := controllerFrom(c)
	if _, selected := ctrl.Selection(); selected {
		return ctrl, true
	}
	if _, err := ctrl.Start(c.Request.Context()); err != nil {
		h.log.Error("会话启动失败", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "获取股票列表失败: " + err.Error(),
		})
		return nil, false
	}
	return ctrl, true
}
