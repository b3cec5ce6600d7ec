package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/alumnet/internal/app/models/dto"
)

// HandleBindError writes a 400 for a failed ShouldBindJSON/ShouldBindQuery, listing
// every failed field rule.
func HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, dto.FieldError{
				Field:   jsonFieldName(fe),
				Message: formatValidationError(fe),
			})
		}

		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fields[0].Message).
			WithField(fields[0].Field).
			WithDetails(fields)
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, detail))
		return
	}

	message := "Invalid request format"
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		message = typeErr.Field + " has the wrong type"
	}
	detail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, message)
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, detail))
}

// jsonFieldName lower-cases the first letter of the struct field, which matches the
// camelCase json tags of the request DTOs
func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := jsonFieldName(e)
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}
