package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/api/auth"
	"github.com/samirwankhede/channel-booking-reports/internal/api/exports"
	"github.com/samirwankhede/channel-booking-reports/internal/api/reports"
	"github.com/samirwankhede/channel-booking-reports/internal/middleware"
)

// Handlers are the route groups served by the dashboard API.
type Handlers struct {
	Auth    *auth.AuthHandler
	Reports *reports.ReportsHandler
	Exports *exports.ExportsHandler
}

// RegisterRoutes wires all HTTP routes.
func RegisterRoutes(r *gin.Engine, log *zap.Logger, h Handlers) {
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.RequestLogger(log))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Channel Booking Reports",
			"description": "Per-channel booking statistics, summaries and spreadsheet exports.",
			"version":     "1.5.0",
			"endpoints":   []string{"/v1/health", "/v1/auth", "/v1/channels", "/v1/reports", "/metrics"},
		})
	})
	r.GET("/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.Auth != nil {
		h.Auth.Register(r)
	}
	if h.Reports != nil {
		h.Reports.Register(r)
	}
	if h.Exports != nil {
		h.Exports.Register(r)
	}
}
