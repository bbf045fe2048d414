package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"order-analytics/internal/analytics"
	"order-analytics/internal/service"
	"order-analytics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	analyticsService *service.AnalyticsService
}

// NewHandler creates a new HTTP handler
func NewHandler(analyticsService *service.AnalyticsService) *Handler {
	return &Handler{
		analyticsService: analyticsService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/reports", h.buildReport)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// ReportRequest is the body of POST /api/v1/reports. Dates are plain
// ISO days; config fields are optional overrides of service defaults.
type ReportRequest struct {
	OrganizationID string            `json:"organization_id" binding:"required"`
	Window         WindowRequest     `json:"window" binding:"required"`
	Config         *analytics.Config `json:"config,omitempty"`
}

// WindowRequest bounds the report.
type WindowRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// buildReport handles analytics report requests
func (h *Handler) buildReport(c *gin.Context) {
	var req ReportRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	window, err := parseWindow(req.Window)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid window",
			"details": err.Error(),
		})
		return
	}

	report, err := h.analyticsService.BuildReport(c.Request.Context(), req.OrganizationID, window, req.Config)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analytics.ErrEmptyOrg) || errors.Is(err, analytics.ErrInvalidWindow) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error":   "Failed to build report",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

func parseWindow(w WindowRequest) (analytics.Window, error) {
	start, err := time.Parse("2006-01-02", w.StartDate)
	if err != nil {
		return analytics.Window{}, err
	}
	end, err := time.Parse("2006-01-02", w.EndDate)
	if err != nil {
		return analytics.Window{}, err
	}
	return analytics.Window{Start: start.UTC(), End: end.UTC()}, nil
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
