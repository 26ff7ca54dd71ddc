package exports

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	reportsHandler "github.com/samirwankhede/channel-booking-reports/internal/api/reports"
	"github.com/samirwankhede/channel-booking-reports/internal/export"
	jwtMiddleware "github.com/samirwankhede/channel-booking-reports/internal/middleware"
	"github.com/samirwankhede/channel-booking-reports/internal/report"
	exportsService "github.com/samirwankhede/channel-booking-reports/internal/service/exports"
)

type Service interface {
	Render(ctx context.Context, req exportsService.ExportRequest) (*exportsService.Artifact, error)
	Submit(ctx context.Context, req exportsService.ExportRequest, requestedBy string) (export.Job, error)
	Status(ctx context.Context, id string) (export.Job, error)
	Download(ctx context.Context, id string) (*exportsService.Artifact, error)
}

type ExportsHandler struct {
	log     *zap.Logger
	svc     Service
	params  reportsHandler.FilterParams
	limiter gin.HandlerFunc
	secret  string
}

// NewExportsHandler wires the export routes; limiter guards every route that renders.
func NewExportsHandler(log *zap.Logger, svc Service, params reportsHandler.FilterParams, limiter gin.HandlerFunc, secret string) *ExportsHandler {
	return &ExportsHandler{log: log, svc: svc, params: params, limiter: limiter, secret: secret}
}

func (h *ExportsHandler) Register(r *gin.Engine) {
	protected := r.Group("/v1/reports")
	protected.Use(jwtMiddleware.Middleware(h.secret))
	{
		protected.GET("/exports/:id", h.status)
		protected.GET("/exports/:id/download", h.download)
	}

	limited := r.Group("/v1/reports")
	limited.Use(jwtMiddleware.Middleware(h.secret))
	if h.limiter != nil {
		limited.Use(h.limiter)
	}
	{
		limited.GET("/export", h.exportNow)
		limited.POST("/exports", h.submit)
	}
}

func (h *ExportsHandler) request(c *gin.Context) (exportsService.ExportRequest, bool) {
	f, err := h.params.Parse(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return exportsService.ExportRequest{}, false
	}
	return exportsService.ExportRequest{
		Filter:   f,
		Grouping: report.Grouping(c.DefaultQuery("grouping", string(report.GroupByDateChannel))),
		Format:   export.ParseFormat(c.Query("format")),
	}, true
}

func (h *ExportsHandler) exportNow(c *gin.Context) {
	req, ok := h.request(c)
	if !ok {
		return
	}
	art, err := h.svc.Render(c.Request.Context(), req)
	if err != nil {
		h.log.Error("Export failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export is temporarily unavailable"})
		return
	}
	sendArtifact(c, art)
}

func (h *ExportsHandler) submit(c *gin.Context) {
	req, ok := h.request(c)
	if !ok {
		return
	}
	job, err := h.svc.Submit(c.Request.Context(), req, c.GetString("aid"))
	if err != nil {
		h.log.Error("Export submit failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export queue is unavailable"})
		return
	}
	c.JSON(http.StatusAccepted, job)
}

func (h *ExportsHandler) status(c *gin.Context) {
	job, err := h.svc.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.jobError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *ExportsHandler) download(c *gin.Context) {
	art, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.jobError(c, err)
		return
	}
	sendArtifact(c, art)
}

func (h *ExportsHandler) jobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, exportsService.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Export job not found"})
	case errors.Is(err, exportsService.ErrJobNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "Export job is not finished"})
	default:
		h.log.Error("Export job lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func sendArtifact(c *gin.Context, art *exportsService.Artifact) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.FileName))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}
