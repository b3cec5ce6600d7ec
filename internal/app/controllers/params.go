package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/pkg/helpers"
)

// pathID reads a positive id path parameter, answering 400 when it is malformed
func pathID(ctx *gin.Context, param, label string) (int64, bool) {
	id, ok := helpers.ParseIDParam(ctx, param)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID").
			WithField(param).
			WithDetails(label + " ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, detail))
		return 0, false
	}
	return id, true
}
