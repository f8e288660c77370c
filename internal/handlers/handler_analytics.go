package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/analytics"
	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_app/internal/dto"
	"github.com/SscSPs/expense_tracker_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

const monthLayout = "2006-01"

type analyticsHandler struct {
	analyticsService portssvc.AnalyticsSvc
}

// RegisterAnalyticsRoutes registers the analytics and dashboard routes.
func RegisterAnalyticsRoutes(rg *gin.RouterGroup, analyticsService portssvc.AnalyticsSvc) {
	h := &analyticsHandler{analyticsService: analyticsService}

	rg.GET("/analytics", h.getAnalytics)
	rg.GET("/dashboard", h.getDashboard)
}

// getAnalytics returns the aggregate snapshot for ?month=YYYY-MM, or for the
// view's selected month when absent.
func (h *analyticsHandler) getAnalytics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.AnalyticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Invalid analytics query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	days := q.Days
	if days == 0 {
		days = analytics.DefaultSeriesDays
	}

	if q.Month == "" {
		c.JSON(http.StatusOK, h.analyticsService.Snapshot(days))
		return
	}

	month, err := time.Parse(monthLayout, q.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be formatted as YYYY-MM"})
		return
	}
	// Mid-month noon stays inside the same month in every time zone.
	month = time.Date(month.Year(), month.Month(), 15, 12, 0, 0, 0, time.UTC)

	c.JSON(http.StatusOK, h.analyticsService.SnapshotFor(month, days))
}

func (h *analyticsHandler) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyticsService.Dashboard())
}
