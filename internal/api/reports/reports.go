package reports

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	jwtMiddleware "github.com/samirwankhede/channel-booking-reports/internal/middleware"
	"github.com/samirwankhede/channel-booking-reports/internal/report"
	reportsService "github.com/samirwankhede/channel-booking-reports/internal/service/reports"
)

type Service interface {
	Bookings(ctx context.Context, f report.Filter, g report.Grouping, limit int) reportsService.BookingsResult
	ChannelPerformance(ctx context.Context, f report.Filter, limit int) reportsService.BookingsResult
	HotelStatistics(ctx context.Context, f report.Filter, limit int) reportsService.BookingsResult
	Summary(ctx context.Context, f report.Filter) reportsService.SummaryResult
	Trend(ctx context.Context, f report.Filter) reportsService.TrendResult
	Report(ctx context.Context, f report.Filter, g report.Grouping) reportsService.Result
	Channels(ctx context.Context) []string
	InvalidateChannels(ctx context.Context) error
}

type ReportsHandler struct {
	log    *zap.Logger
	svc    Service
	params FilterParams
	topN   int
	secret string
}

func NewReportsHandler(log *zap.Logger, svc Service, params FilterParams, topN int, secret string) *ReportsHandler {
	return &ReportsHandler{log: log, svc: svc, params: params, topN: topN, secret: secret}
}

func (h *ReportsHandler) Register(r *gin.Engine) {
	protected := r.Group("/v1")
	protected.Use(jwtMiddleware.Middleware(h.secret))
	{
		protected.GET("/channels", h.channels)
		protected.POST("/channels/refresh", h.refreshChannels)
		protected.GET("/reports", h.report)
		protected.GET("/reports/bookings", h.bookings)
		protected.GET("/reports/summary", h.summary)
		protected.GET("/reports/trend", h.trend)
		protected.GET("/reports/channels", h.channelPerformance)
		protected.GET("/reports/hotels", h.hotels)
	}
}

func (h *ReportsHandler) filter(c *gin.Context) (report.Filter, bool) {
	f, err := h.params.Parse(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return f, false
	}
	return f, true
}

func (h *ReportsHandler) limit(c *gin.Context) int {
	top, err := strconv.Atoi(c.DefaultQuery("top", strconv.Itoa(h.topN)))
	if err != nil || top < 0 {
		return h.topN
	}
	return top
}

func (h *ReportsHandler) channels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": h.svc.Channels(c.Request.Context())})
}

func (h *ReportsHandler) refreshChannels(c *gin.Context) {
	if err := h.svc.InvalidateChannels(c.Request.Context()); err != nil {
		h.log.Error("Channel cache invalidation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": h.svc.Channels(c.Request.Context())})
}

func (h *ReportsHandler) report(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	g := report.Grouping(c.DefaultQuery("grouping", string(report.GroupByDateChannel)))
	c.JSON(http.StatusOK, h.svc.Report(c.Request.Context(), f, g))
}

func (h *ReportsHandler) bookings(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Bookings(c.Request.Context(), f, report.GroupByDateChannel, h.limit(c)))
}

func (h *ReportsHandler) summary(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Summary(c.Request.Context(), f))
}

func (h *ReportsHandler) trend(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Trend(c.Request.Context(), f))
}

func (h *ReportsHandler) channelPerformance(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.ChannelPerformance(c.Request.Context(), f, h.limit(c)))
}

func (h *ReportsHandler) hotels(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.HotelStatistics(c.Request.Context(), f, h.limit(c)))
}
