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

// PostController handles post-related operations
type PostController struct {
	postService services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService) *PostController {
	return &PostController{
		postService: postService,
	}
}

// CreatePost handles post creation
// @Summary Create a post
// @Description Publishes a post. Banned members and admins cannot post.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post content"
// @Success 201 {object} dto.APIResponse{data=models.Post} "Post created successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request data or prohibited language"
// @Failure 401 {object} dto.APIResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.APIResponse "Forbidden - Account is banned"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	post, err := c.postService.CreatePost(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewCreatedResponse(post, "Post created successfully"))
}

// ListPosts returns the feed
// @Summary List posts
// @Description Returns the feed, pinned posts first and then newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category filter"
// @Param authorId query int false "Author filter"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Post}} "Posts retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Failure 401 {object} dto.APIResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /posts [get]
func (c *PostController) ListPosts(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var query dto.PostFeedQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.postService.ListPosts(ctx, actor, &query, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListSavedPosts returns the caller's bookmarks
// @Summary List saved posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Post}} "Saved posts retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.APIResponse "Forbidden - Members only"
// @Router /posts/saved [get]
func (c *PostController) ListSavedPosts(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	resp, err := c.postService.ListSavedPosts(ctx, actor, helpers.ParsePagination(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetPost retrieves a post by ID
// @Summary Get a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Post} "Post retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid post ID"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id} [get]
func (c *PostController) GetPost(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	post, err := c.postService.GetPost(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// UpdatePost edits the caller's post
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Param request body dto.UpdatePostRequest true "New content"
// @Success 200 {object} dto.APIResponse{data=models.Post} "Post updated successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request data or prohibited language"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not the author or banned"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id} [patch]
func (c *PostController) UpdatePost(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	post, err := c.postService.UpdatePost(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post, "Post updated successfully"))
}

// DeletePost removes a post
// @Summary Delete a post
// @Description Authors may delete their own posts at any time; admins may delete any post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Post deleted successfully"
// @Failure 403 {object} dto.APIResponse "Forbidden - Not the author"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id} [delete]
func (c *PostController) DeletePost(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	if err := c.postService.DeletePost(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Post deleted successfully"))
}

// UpvotePost toggles the caller's upvote
// @Summary Upvote a post
// @Description Adds an upvote, removes it when already present, or switches a downvote
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.VoteOutcome} "Vote recorded"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id}/upvote [post]
func (c *PostController) UpvotePost(ctx *gin.Context) {
	c.vote(ctx, models.VoteUp)
}

// DownvotePost toggles the caller's downvote
// @Summary Downvote a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.VoteOutcome} "Vote recorded"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id}/downvote [post]
func (c *PostController) DownvotePost(ctx *gin.Context) {
	c.vote(ctx, models.VoteDown)
}

func (c *PostController) vote(ctx *gin.Context, dir models.VoteDirection) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	outcome, err := c.postService.VotePost(ctx, actor, id, dir)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(outcome))
}

// ToggleSave bookmarks or un-bookmarks a post
// @Summary Save a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SaveResponse} "Bookmark toggled"
// @Failure 403 {object} dto.APIResponse "Forbidden - Members only"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id}/save [post]
func (c *PostController) ToggleSave(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	resp, err := c.postService.ToggleSave(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// TogglePin pins or unpins a post
// @Summary Pin a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.PinResponse} "Pin toggled"
// @Failure 403 {object} dto.APIResponse "Forbidden - Admin only"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id}/pin [patch]
func (c *PostController) TogglePin(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	resp, err := c.postService.TogglePin(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// RecountComments reconciles a post's comment counter
// @Summary Recount comments
// @Description Recomputes comments_count from the post's active comments
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.RecountResponse} "Count reconciled"
// @Failure 403 {object} dto.APIResponse "Forbidden - Admin only"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /admin/posts/{id}/recount-comments [post]
func (c *PostController) RecountComments(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Post")
	if !ok {
		return
	}

	resp, err := c.postService.RecountComments(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
