// internal/handlers/dashboard.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/balaguruva/admin-backend/internal/services"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	feed             *services.OrderFeed
}

func NewDashboardHandler(dashboardService *services.DashboardService, feed *services.OrderFeed) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		feed:             feed,
	}
}

// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	summary, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, summary)
}

// GET /api/events/orders
func (h *DashboardHandler) OrderFeed(c *gin.Context) {
	if err := h.feed.Serve(c.Writer, c.Request); err != nil {
		logrus.WithError(err).Debug("Order feed connection rejected")
	}
}
