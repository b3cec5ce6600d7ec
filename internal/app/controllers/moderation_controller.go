package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/app/services"
	"github.com/yigit/alumnet/internal/middleware"
	"github.com/yigit/alumnet/internal/pkg/helpers"
)

// ModerationController handles reports and the admin moderation views
type ModerationController struct {
	moderationService services.ModerationService
}

// NewModerationController creates a new ModerationController
func NewModerationController(moderationService services.ModerationService) *ModerationController {
	return &ModerationController{
		moderationService: moderationService,
	}
}

// ReportPost files a report against a post
// @Summary Report a post
// @Description Reports another member's post. Reaching the report threshold suspends the author automatically.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Param request body dto.ReportPostRequest true "Report reason"
// @Success 201 {object} dto.APIResponse{data=dto.ReportPostResponse} "Report filed"
// @Failure 400 {object} dto.APIResponse "Own post or already reported"
// @Failure 403 {object} dto.APIResponse "Forbidden - Members only"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id}/report [post]
func (c *ModerationController) ReportPost(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	var req dto.ReportPostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.moderationService.ReportPost(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewCreatedResponse(resp, "Post reported successfully"))
}

// ListReports lists reports for review
// @Summary List reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(pending, reviewed, resolved, dismissed)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Report}} "Reports retrieved successfully"
// @Failure 403 {object} dto.APIResponse "Forbidden - Admin only"
// @Router /admin/reports [get]
func (c *ModerationController) ListReports(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var query dto.ReportListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.moderationService.ListReports(ctx, actor, &query, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListReportedUsers aggregates open reports by post author
// @Summary List reported users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.ReportedUser}} "Reported users retrieved successfully"
// @Failure 403 {object} dto.APIResponse "Forbidden - Admin only"
// @Router /admin/reported-users [get]
func (c *ModerationController) ListReportedUsers(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	resp, err := c.moderationService.ListReportedUsers(ctx, actor, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// BanUser bans or suspends a member
// @Summary Ban a user
// @Description Applies a temporary ban (duration in days) or a suspension and resolves the user's pending reports
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID" Format(int64) minimum(1)
// @Param request body dto.BanUserRequest true "Ban details"
// @Success 200 {object} dto.APIResponse{data=models.BanRecord} "User banned"
// @Failure 400 {object} dto.APIResponse "Invalid ban request"
// @Failure 403 {object} dto.APIResponse "Forbidden - Admin only or staff target"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /admin/users/{id}/ban [post]
func (c *ModerationController) BanUser(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}

	var req dto.BanUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	record, err := c.moderationService.BanUser(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(record, "User banned successfully"))
}

// UnbanUser lifts a ban
// @Summary Unban a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.BanRecord} "User unbanned"
// @Failure 403 {object} dto.APIResponse "Forbidden - Admin only"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /admin/users/{id}/unban [post]
func (c *ModerationController) UnbanUser(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}

	record, err := c.moderationService.UnbanUser(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(record, "User unbanned successfully"))
}

// DismissReport closes a report without action
// @Summary Dismiss a report
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Report} "Report dismissed"
// @Failure 400 {object} dto.APIResponse "Report already closed"
// @Failure 403 {object} dto.APIResponse "Forbidden - Admin only"
// @Failure 404 {object} dto.APIResponse "Report not found"
// @Router /admin/reports/{id}/dismiss [patch]
func (c *ModerationController) DismissReport(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Report")
	if !ok {
		return
	}

	report, err := c.moderationService.DismissReport(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, "Report dismissed"))
}
