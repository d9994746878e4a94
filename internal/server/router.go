package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wallet-confirm/internal/handler"
	"wallet-confirm/internal/handler/response"
	"wallet-confirm/pkg/monitor"
)

// Handlers 路由用到的 handler
type Handlers struct {
	Requests    *handler.RequestHandler
	Dialogs     *handler.DialogHandler
	Preferences *handler.PreferencesHandler
}

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(h Handlers) *gin.Engine {
	// 0. 初始化监控指标
	monitor.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, gin.H{"pong": true})
		})

		api.POST("/requests", h.Requests.Submit)

		dialogs := api.Group("/dialogs")
		dialogs.GET("", h.Dialogs.List)
		dialogs.GET("/:id", h.Dialogs.Get)
		dialogs.POST("/:id/resolve", h.Dialogs.Resolve)

		api.GET("/preferences", h.Preferences.Get)
		api.PUT("/preferences", h.Preferences.Update)
	}

	// 5. websocket
	r.GET("/ws/dialogs/:id", h.Dialogs.Watch)

	return r
}
