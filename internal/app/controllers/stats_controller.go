package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evrim/counselbridge/internal/app/models/dto"
	"github.com/evrim/counselbridge/internal/app/services"
	"github.com/evrim/counselbridge/internal/middleware"
)

// StatsController serves the public platform counters
type StatsController struct {
	statsService *services.StatsService
}

// NewStatsController creates a new StatsController
func NewStatsController(statsService *services.StatsService) *StatsController {
	return &StatsController{
		statsService: statsService,
	}
}

// GetPlatformStats returns platform-wide counts
// @Summary Platform statistics
// @Description Returns headline student, counselor and request counts
// @Tags stats
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PlatformStats} "Stats retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /stats/platform [get]
func (c *StatsController) GetPlatformStats(ctx *gin.Context) {
	stats, err := c.statsService.GetPlatformStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(stats, "Platform stats retrieved"))
}
