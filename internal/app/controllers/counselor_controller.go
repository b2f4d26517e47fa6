package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/evrim/counselbridge/internal/app/models/dto"
	"github.com/evrim/counselbridge/internal/app/services"
	"github.com/evrim/counselbridge/internal/middleware"
)

// CounselorController serves the public counselor directory
type CounselorController struct {
	counselorService *services.CounselorService
}

// NewCounselorController creates a new CounselorController
func NewCounselorController(counselorService *services.CounselorService) *CounselorController {
	return &CounselorController{
		counselorService: counselorService,
	}
}

// ListCounselors lists available counselors
// @Summary List available counselors
// @Description Returns all counselors currently accepting students, best rated first
// @Tags counselors
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Counselor} "Counselors retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /counselors [get]
func (c *CounselorController) ListCounselors(ctx *gin.Context) {
	counselors, err := c.counselorService.ListAvailable(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(counselors, "Counselors retrieved"))
}

// GetCounselorByID retrieves a counselor profile
// @Summary Get counselor details
// @Description Returns a single counselor profile by its ID
// @Tags counselors
// @Produce json
// @Param id path int true "Counselor ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Counselor} "Counselor retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid counselor ID"
// @Failure 404 {object} dto.ErrorResponse "Counselor not found"
// @Router /counselors/{id} [get]
func (c *CounselorController) GetCounselorByID(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid counselor ID")
		errorDetail = errorDetail.WithDetails("Counselor ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	counselor, err := c.counselorService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(counselor, "Counselor retrieved"))
}
