package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/app/services"
	"github.com/yigit/alumnet/internal/middleware"
	"github.com/yigit/alumnet/internal/pkg/helpers"
)

// NotificationController serves the caller's notification inbox
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
	}
}

// ListNotifications returns the caller's notifications, newest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Notification}} "Notifications retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized - Invalid or missing token"
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var query dto.NotificationListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.notificationService.List(ctx, actor.Ref(), query.Unread, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UnreadCount counts the caller's unread notifications
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Count retrieved successfully"
// @Router /notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	n, err := c.notificationService.UnreadCount(ctx, actor.Ref())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CountResponse{Count: n}))
}

// MarkRead marks one notification read
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Notification marked as read"
// @Failure 404 {object} dto.APIResponse "Notification not found"
// @Router /notifications/{id}/read [patch]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Notification")
	if !ok {
		return
	}

	if err := c.notificationService.MarkRead(ctx, id, actor.Ref()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notification marked as read"))
}

// MarkAllRead marks every notification of the caller read
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ReadAllResponse} "Notifications marked as read"
// @Router /notifications/read-all [patch]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	n, err := c.notificationService.MarkAllRead(ctx, actor.Ref())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ReadAllResponse{Updated: n}))
}

// DeleteNotification removes one notification
// @Summary Delete a notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Notification deleted"
// @Failure 404 {object} dto.APIResponse "Notification not found"
// @Router /notifications/{id} [delete]
func (c *NotificationController) DeleteNotification(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Notification")
	if !ok {
		return
	}

	if err := c.notificationService.Delete(ctx, id, actor.Ref()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notification deleted"))
}
