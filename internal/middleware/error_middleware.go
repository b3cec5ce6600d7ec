package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/logger"
)

// HandleAPIError maps an error to the error envelope. The sentinel wrapped by the error
// selects the status; a CustomError message is shown verbatim.
func HandleAPIError(c *gin.Context, err error) {
	status, code, fallback := classify(err)

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("requestId", c.GetString(requestIDKey)).
			Msg("Unhandled error")
		// internal details never reach the client
		c.JSON(status, dto.NewErrorResponse(status, dto.NewErrorDetail(code, fallback)))
		return
	}

	detail := dto.NewErrorDetail(code, apperrors.MessageOf(err, fallback))
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && len(custom.Details) > 0 {
		detail = detail.WithDetails(custom.Details)
	}
	c.JSON(status, dto.NewErrorResponse(status, detail))
}

func classify(err error) (int, dto.ErrorCode, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Resource already exists"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
	}
}

// NoRoute answers unknown paths with the standard envelope
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewResourceNotFoundError("Route not found"))
	}
}
