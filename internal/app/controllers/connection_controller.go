package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/evrim/counselbridge/internal/app/models/dto"
	"github.com/evrim/counselbridge/internal/app/services"
	"github.com/evrim/counselbridge/internal/middleware"
)

// ConnectionController handles the student side of the connection workflow.
// The acting student is always the authenticated caller; request bodies never
// carry a student identity.
type ConnectionController struct {
	connectionService *services.ConnectionService
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService *services.ConnectionService) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
	}
}

// CreateConnection creates a connection request to a counselor
// @Summary Request a counselor connection
// @Description Creates a pending connection request from the authenticated student to a counselor. A student may hold at most one pending request.
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateConnectionRequest true "Connection request"
// @Success 201 {object} dto.APIResponse{data=models.ConnectionRequest} "Request created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student or counselor not found"
// @Failure 409 {object} dto.ErrorResponse "A pending request already exists"
// @Router /connections [post]
func (c *ConnectionController) CreateConnection(ctx *gin.Context) {
	var req dto.CreateConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid connection request data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	studentEmail, ok := middleware.CallerEmail(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	request, err := c.connectionService.CreateConnectionRequest(ctx.Request.Context(), studentEmail, req.CounselorEmail, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(request, "Connection request created"))
}

// ListConnections lists the caller's connection requests
// @Summary List my connection requests
// @Description Returns all of the authenticated student's connection requests, most recent first
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ConnectionRequest} "Requests retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /connections [get]
func (c *ConnectionController) ListConnections(ctx *gin.Context) {
	studentEmail, ok := middleware.CallerEmail(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	requests, err := c.connectionService.GetStudentConnections(ctx.Request.Context(), studentEmail)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(requests, "Connection requests retrieved"))
}

// CancelConnection cancels a pending connection request
// @Summary Cancel a connection request
// @Description Transitions the caller's pending request to cancelled. Only pending requests owned by the caller can be cancelled.
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection request ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.ConnectionRequest} "Request cancelled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request is not pending"
// @Router /connections/{id}/cancel [post]
func (c *ConnectionController) CancelConnection(ctx *gin.Context) {
	id, err := parseIDParam(ctx)
	if err != nil {
		return
	}

	studentEmail, ok := middleware.CallerEmail(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	request, err := c.connectionService.CancelConnectionRequest(ctx.Request.Context(), id, studentEmail)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(request, "Connection request cancelled"))
}

// parseIDParam parses the :id path parameter and writes the 400 itself on failure
func parseIDParam(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request ID")
		errorDetail = errorDetail.WithDetails("Request ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		if err == nil {
			err = strconv.ErrRange
		}
		return 0, err
	}
	return id, nil
}
