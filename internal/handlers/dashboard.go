package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/services"
)

// DashboardHandler serves the staff dashboard counters
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats, "")
}
