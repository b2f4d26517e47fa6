package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evrim/counselbridge/internal/app/models/dto"
	"github.com/evrim/counselbridge/internal/app/services"
	"github.com/evrim/counselbridge/internal/middleware"
	"github.com/evrim/counselbridge/internal/pkg/helpers"
)

// AdminController handles the administrative side of the connection workflow
type AdminController struct {
	connectionService *services.ConnectionService
}

// NewAdminController creates a new AdminController
func NewAdminController(connectionService *services.ConnectionService) *AdminController {
	return &AdminController{
		connectionService: connectionService,
	}
}

// ListAllConnections lists connection requests across all students
// @Summary List all connection requests
// @Description Returns a page of connection requests across all students, most recent first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Requests retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/connections [get]
func (c *AdminController) ListAllConnections(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	requests, total, err := c.connectionService.ListAll(ctx.Request.Context(), offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PaginatedResponse{
		Items:      requests,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, "Connection requests retrieved"))
}

// ListPendingConnections lists all pending connection requests
// @Summary List pending connection requests
// @Description Returns every request awaiting an admin decision, most recent first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ConnectionRequest} "Pending requests retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/connections/pending [get]
func (c *AdminController) ListPendingConnections(ctx *gin.Context) {
	requests, err := c.connectionService.ListPending(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(requests, "Pending connection requests retrieved"))
}

// ApproveConnection approves a pending connection request
// @Summary Approve a connection request
// @Description Transitions a pending request to approved and records optional admin notes
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection request ID" Format(int64) minimum(1)
// @Param request body dto.ApproveConnectionRequest false "Optional admin notes"
// @Success 200 {object} dto.APIResponse{data=models.ConnectionRequest} "Request approved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request is not pending"
// @Router /admin/connections/{id}/approve [post]
func (c *AdminController) ApproveConnection(ctx *gin.Context) {
	id, err := parseIDParam(ctx)
	if err != nil {
		return
	}

	var req dto.ApproveConnectionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid approval data")
			errorDetail = errorDetail.WithDetails(err.Error())
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
	}

	request, err := c.connectionService.ApproveConnectionRequest(ctx.Request.Context(), id, req.Notes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(request, "Connection request approved"))
}

// RejectConnection rejects a pending connection request
// @Summary Reject a connection request
// @Description Transitions a pending request to rejected and records the reason
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection request ID" Format(int64) minimum(1)
// @Param request body dto.RejectConnectionRequest false "Rejection reason"
// @Success 200 {object} dto.APIResponse{data=models.ConnectionRequest} "Request rejected"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request is not pending"
// @Router /admin/connections/{id}/reject [post]
func (c *AdminController) RejectConnection(ctx *gin.Context) {
	id, err := parseIDParam(ctx)
	if err != nil {
		return
	}

	var req dto.RejectConnectionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid rejection data")
			errorDetail = errorDetail.WithDetails(err.Error())
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
	}

	request, err := c.connectionService.RejectConnectionRequest(ctx.Request.Context(), id, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(request, "Connection request rejected"))
}

// GetConnectionStats returns request counts by status
// @Summary Connection request statistics
// @Description Returns counts of requests per lifecycle state
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.ConnectionStats} "Stats retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/connections/stats [get]
func (c *AdminController) GetConnectionStats(ctx *gin.Context) {
	stats, err := c.connectionService.GetConnectionStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(stats, "Connection stats retrieved"))
}
