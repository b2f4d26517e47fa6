package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evrim/counselbridge/internal/app/models/dto"
	"github.com/evrim/counselbridge/internal/app/services"
	"github.com/evrim/counselbridge/internal/pkg/apperrors"
)

// HandleAPIError maps application errors to HTTP responses. Controllers call
// this instead of translating errors themselves so every endpoint returns the
// same shape for the same failure.
func HandleAPIError(c *gin.Context, err error) {
	var dup *services.DuplicatePendingError

	switch {
	case errors.As(err, &dup):
		// Recoverable conflict. Include the existing pending request so the
		// client can offer cancel-and-retry.
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeDuplicatePending, "You already have a pending connection request")
		errorDetail = errorDetail.WithDetails(gin.H{"existingRequest": dup.Existing})
		c.JSON(http.StatusConflict, dto.NewErrorResponse(errorDetail))
	case errors.Is(err, apperrors.ErrDuplicatePendingRequest):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeDuplicatePending, "You already have a pending connection request")))
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidTransition, "Request is not in a state that allows this action")))
	case errors.Is(err, apperrors.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Student not found")))
	case errors.Is(err, apperrors.ErrCounselorNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Counselor not found")))
	case errors.Is(err, apperrors.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Connection request not found")))
	case errors.Is(err, apperrors.ErrUserNotFound), errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid email or password")))
	case errors.Is(err, apperrors.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, "Account is disabled")))
	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")))
	case errors.Is(err, apperrors.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")))
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())))
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists")))
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeStoreError, "Storage is temporarily unavailable")))
	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
