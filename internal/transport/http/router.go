package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/greenbasket/farmdash/pkg/httpx"
)

// NewRouter — маршруты дашборда. otelServiceName пустой — трейсинг выключен.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.HandleMethodNotAllowed = true

	r.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/orders", h.listOrders)
		api.POST("/orders/refresh", h.refreshOrders)
		api.PATCH("/orders/:id/status", h.updateStatus)
		api.POST("/orders/bulk-status", h.bulkStatus)
		api.PUT("/orders/selection", h.setSelection)
		api.GET("/orders/export", h.exportOrders)
		api.GET("/notifications", h.listNotifications)
	}

	return r
}
