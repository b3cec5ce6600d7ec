package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/app/services"
	"github.com/yigit/alumnet/internal/middleware"
	"github.com/yigit/alumnet/internal/pkg/helpers"
)

// ConnectionController handles the connection handshake between members
type ConnectionController struct {
	connectionService services.ConnectionService
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService services.ConnectionService) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
	}
}

// RequestConnection sends a connection request
// @Summary Request a connection
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ConnectionRequest true "Recipient"
// @Success 201 {object} dto.APIResponse{data=models.Connection} "Connection requested"
// @Failure 400 {object} dto.APIResponse "Self request or existing connection"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /connections/request [post]
func (c *ConnectionController) RequestConnection(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var req dto.ConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	conn, err := c.connectionService.RequestConnection(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewCreatedResponse(conn, "Connection request sent"))
}

// AcceptConnection accepts a pending request
// @Summary Accept a connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Connection} "Connection accepted"
// @Failure 400 {object} dto.APIResponse "Request is not pending"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not the recipient"
// @Failure 404 {object} dto.APIResponse "Connection not found"
// @Router /connections/{id}/accept [patch]
func (c *ConnectionController) AcceptConnection(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Connection")
	if !ok {
		return
	}

	conn, err := c.connectionService.AcceptConnection(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conn, "Connection accepted"))
}

// RejectConnection rejects a pending request
// @Summary Reject a connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Connection} "Connection rejected"
// @Failure 400 {object} dto.APIResponse "Request is not pending"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not the recipient"
// @Failure 404 {object} dto.APIResponse "Connection not found"
// @Router /connections/{id}/reject [patch]
func (c *ConnectionController) RejectConnection(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Connection")
	if !ok {
		return
	}

	conn, err := c.connectionService.RejectConnection(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conn, "Connection rejected"))
}

// DeleteConnection removes a connection in any status
// @Summary Delete a connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Connection removed"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not a party"
// @Failure 404 {object} dto.APIResponse "Connection not found"
// @Router /connections/{id} [delete]
func (c *ConnectionController) DeleteConnection(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Connection")
	if !ok {
		return
	}

	if err := c.connectionService.DeleteConnection(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Connection removed"))
}

// GetStatus reports the connection state with another member
// @Summary Connection status
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.ConnectionState} "Status retrieved"
// @Router /connections/status/{userId} [get]
func (c *ConnectionController) GetStatus(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "userId", "User")
	if !ok {
		return
	}

	state, err := c.connectionService.GetStatus(ctx, actor, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(state))
}

// ListConnections lists the caller's connections
// @Summary List connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter, accepted by default" Enums(pending, accepted, rejected)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Connection}} "Connections retrieved"
// @Router /connections [get]
func (c *ConnectionController) ListConnections(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var query dto.ConnectionListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.connectionService.ListConnections(ctx, actor, &query, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListIncomingRequests lists pending requests addressed to the caller
// @Summary Incoming connection requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Connection}} "Requests retrieved"
// @Router /connections/requests [get]
func (c *ConnectionController) ListIncomingRequests(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	resp, err := c.connectionService.ListIncomingRequests(ctx, actor, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
