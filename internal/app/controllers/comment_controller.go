package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/app/services"
	"github.com/yigit/alumnet/internal/middleware"
	"github.com/yigit/alumnet/internal/pkg/helpers"
)

// CommentController handles comments, replies and the thread view
type CommentController struct {
	commentService services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService services.CommentService) *CommentController {
	return &CommentController{
		commentService: commentService,
	}
}

// CreateComment handles comment and reply creation
// @Summary Create a comment
// @Description Adds a top-level comment, or a reply when parentCommentId is set
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommentRequest true "Comment content"
// @Success 201 {object} dto.APIResponse{data=models.Comment} "Comment created successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request data, prohibited language or parent on another post"
// @Failure 403 {object} dto.APIResponse "Forbidden - Account is banned"
// @Failure 404 {object} dto.APIResponse "Post or parent comment not found"
// @Router /comments [post]
func (c *CommentController) CreateComment(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	comment, err := c.commentService.CreateComment(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewCreatedResponse(comment, "Comment created successfully"))
}

// ListComments returns a post's top-level comments
// @Summary List comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID" Format(int64) minimum(1)
// @Param sortBy query string false "top or new" Enums(top, new)
// @Param order query string false "asc or desc" Enums(asc, desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Comment}} "Comments retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{postId}/comments [get]
func (c *CommentController) ListComments(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "postId", "Post")
	if !ok {
		return
	}

	var query dto.CommentListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.commentService.ListComments(ctx, actor, postID, &query, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetThread returns a post's comments as a nested tree
// @Summary Comment thread
// @Description Returns the comment tree, oldest first, rendered up to five levels deep
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentThreadNode} "Thread retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{postId}/comments/thread [get]
func (c *CommentController) GetThread(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "postId", "Post")
	if !ok {
		return
	}

	tree, err := c.commentService.GetThread(ctx, actor, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tree))
}

// ListReplies returns direct replies to a comment
// @Summary List replies
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID" Format(int64) minimum(1)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.ReplyResponse}} "Replies retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Maximum depth reached"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /comments/{id}/replies [get]
func (c *CommentController) ListReplies(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Comment")
	if !ok {
		return
	}

	resp, err := c.commentService.ListReplies(ctx, actor, id, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UpdateComment edits the caller's comment
// @Summary Update a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID" Format(int64) minimum(1)
// @Param request body dto.UpdateCommentRequest true "New content"
// @Success 200 {object} dto.APIResponse{data=models.Comment} "Comment updated successfully"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not the author"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /comments/{id} [patch]
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Comment")
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	comment, err := c.commentService.UpdateComment(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(comment, "Comment updated successfully"))
}

// DeleteComment removes a comment
// @Summary Delete a comment
// @Description Authors may delete within 24 hours of posting; admins at any time
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Comment deleted successfully"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not the author or window elapsed"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /comments/{id} [delete]
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Comment")
	if !ok {
		return
	}

	if err := c.commentService.DeleteComment(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Comment deleted successfully"))
}

// UpvoteComment toggles the caller's upvote on a comment
// @Summary Upvote a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.VoteOutcome} "Vote recorded"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /comments/{id}/upvote [post]
func (c *CommentController) UpvoteComment(ctx *gin.Context) {
	c.vote(ctx, models.VoteUp)
}

// DownvoteComment toggles the caller's downvote on a comment
// @Summary Downvote a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.VoteOutcome} "Vote recorded"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /comments/{id}/downvote [post]
func (c *CommentController) DownvoteComment(ctx *gin.Context) {
	c.vote(ctx, models.VoteDown)
}

func (c *CommentController) vote(ctx *gin.Context, dir models.VoteDirection) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Comment")
	if !ok {
		return
	}

	outcome, err := c.commentService.VoteComment(ctx, actor, id, dir)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(outcome))
}
