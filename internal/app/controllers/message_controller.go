package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/app/services"
	"github.com/yigit/alumnet/internal/middleware"
	"github.com/yigit/alumnet/internal/pkg/helpers"
)

// MessageController handles direct conversations between users and admins
type MessageController struct {
	messageService services.MessageService
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{
		messageService: messageService,
	}
}

// StartConversation opens or returns the conversation with a participant
// @Summary Start a conversation
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateConversationRequest true "Participant"
// @Success 200 {object} dto.APIResponse{data=models.ConversationSummary} "Conversation ready"
// @Failure 400 {object} dto.APIResponse "Conversation with oneself"
// @Failure 404 {object} dto.APIResponse "Participant not found"
// @Router /messages/conversation [post]
func (c *MessageController) StartConversation(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	conv, err := c.messageService.StartConversation(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conv))
}

// ListConversations lists the caller's conversations
// @Summary List conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.ConversationSummary}} "Conversations retrieved"
// @Router /messages/conversations [get]
func (c *MessageController) ListConversations(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	resp, err := c.messageService.ListConversations(ctx, actor, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// SendMessage sends a message into a conversation
// @Summary Send a message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.Message} "Message sent"
// @Failure 400 {object} dto.APIResponse "Invalid request data or prohibited language"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not a participant or banned"
// @Failure 404 {object} dto.APIResponse "Conversation not found"
// @Router /messages/send [post]
func (c *MessageController) SendMessage(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	msg, err := c.messageService.SendMessage(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewCreatedResponse(msg, "Message sent"))
}

// GetMessages returns a page of a conversation and marks it read
// @Summary Get messages
// @Description Pages go back in time; items within a page are oldest first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID" Format(int64) minimum(1)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Message}} "Messages retrieved"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not a participant"
// @Failure 404 {object} dto.APIResponse "Conversation not found"
// @Router /messages/conversation/{id} [get]
func (c *MessageController) GetMessages(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Conversation")
	if !ok {
		return
	}

	resp, err := c.messageService.GetMessages(ctx, actor, id, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// MarkConversationRead marks a conversation read
// @Summary Mark a conversation read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.MarkReadResponse} "Messages marked as read"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not a participant"
// @Router /messages/conversation/{id}/read [patch]
func (c *MessageController) MarkConversationRead(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Conversation")
	if !ok {
		return
	}

	resp, err := c.messageService.MarkConversationRead(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UnreadCount counts unread messages sent to the caller
// @Summary Unread message count
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Count retrieved"
// @Router /messages/unread-count [get]
func (c *MessageController) UnreadCount(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	n, err := c.messageService.UnreadCount(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CountResponse{Count: n}))
}

// DeleteMessage withdraws a message
// @Summary Delete a message
// @Description Senders may delete their messages within 24 hours
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Message deleted"
// @Failure 400 {object} dto.APIResponse "Window elapsed"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not the sender"
// @Failure 404 {object} dto.APIResponse "Message not found"
// @Router /messages/{id} [delete]
func (c *MessageController) DeleteMessage(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Message")
	if !ok {
		return
	}

	if err := c.messageService.DeleteMessage(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Message deleted"))
}
