package handlers

import (
	"assetdesk/internal/services"
	"assetdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// Stats 首页统计
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), orgID(c))
	if err != nil {
		handleError(c, err, "查询统计")
		return
	}
	response.Success(c, stats)
}
