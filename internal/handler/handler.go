// Package handler 提供给前端的 HTTP/WebSocket 接口
package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-forecast-dashboard/internal/dashboard"
	"stock-forecast-dashboard/internal/service"
)

const (
	// SessionHeader 会话ID请求/响应头
	SessionHeader = "X-Session-ID"
	sessionQuery  = "session"
	controllerKey = "controller"
	sessionKey    = "session"
)

// Handler 路由处理器
type Handler struct {
	sessions *service.SessionStore
	catalog  *dashboard.Catalog
	log      *slog.Logger
}

// New 创建处理器
func New(sessions *service.SessionStore, catalog *dashboard.Catalog, log *slog.Logger) *Handler {
	return &Handler{sessions: sessions, catalog: catalog, log: log}
}

// Register 注册路由
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.Use(h.SessionMiddleware())
	{
		// 股票目录
		api.GET("/instruments", h.GetInstruments)
		api.POST("/catalog/refresh", h.RefreshCatalog)

		// 选股与数据
		api.POST("/selection", h.Select)
		api.GET("/dashboard", h.GetDashboard)
		api.GET("/chart", h.GetChart)
		api.GET("/ledger", h.GetLedger)
		api.GET("/summary", h.GetSummary)

		// 推送
		api.GET("/ws", h.Stream)
	}
}

// SessionMiddleware 根据 X-Session-ID（或 ?session=）找到会话，不存在时新建
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			id = c.Query(sessionQuery)
		}
		id, ctrl, created := h.sessions.GetOrCreate(id)
		if created {
			h.log.Debug("新会话", "session", id, "path", c.FullPath())
		}
		c.Header(SessionHeader, id)
		c.Set(controllerKey, ctrl)
		c.Set(sessionKey, id)
		c.Next()
	}
}

func controllerFrom(c *gin.Context) *dashboard.Controller {
	return c.MustGet(controllerKey).(*dashboard.Controller)
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"catalog":  h.catalog.Loaded(),
		"sessions": h.sessions.Len(),
	})
}
