package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// registerHealthRoutes registers the unauthenticated liveness route. It
// reports whether converted totals are available without failing when not.
func registerHealthRoutes(r *gin.Engine, rates portssvc.RateSource) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"ratesReady": rates != nil && rates.IsReady(),
		})
	})
}
