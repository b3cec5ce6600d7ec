package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/alumnet/internal/app/auth"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/contentpolicy"
	"github.com/yigit/alumnet/internal/pkg/helpers"
	"github.com/yigit/alumnet/internal/pkg/metrics"
)

const defaultCategory = "general"

// PostService defines the interface for post operations
type PostService interface {
	CreatePost(ctx context.Context, actor models.Actor, req *dto.CreatePostRequest) (*models.Post, error)
	ListPosts(ctx context.Context, actor models.Actor, query *dto.PostFeedQuery, page helpers.Page) (*dto.PaginatedResponse, error)
	GetPost(ctx context.Context, actor models.Actor, id int64) (*models.Post, error)
	ListSavedPosts(ctx context.Context, actor models.Actor, page helpers.Page) (*dto.PaginatedResponse, error)
	UpdatePost(ctx context.Context, actor models.Actor, id int64, req *dto.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, actor models.Actor, id int64) error
	VotePost(ctx context.Context, actor models.Actor, id int64, dir models.VoteDirection) (*models.VoteOutcome, error)
	ToggleSave(ctx context.Context, actor models.Actor, id int64) (*dto.SaveResponse, error)
	TogglePin(ctx context.Context, actor models.Actor, id int64) (*dto.PinResponse, error)
	RecountComments(ctx context.Context, actor models.Actor, id int64) (*dto.RecountResponse, error)
}

// postServiceImpl implements PostService
type postServiceImpl struct {
	postRepo      PostStore
	policy        contentpolicy.ContentPolicy
	notifications NotificationService
	clock         Clock
	logger        zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo PostStore,
	policy contentpolicy.ContentPolicy,
	notifications NotificationService,
	clock Clock,
	logger zerolog.Logger,
) PostService {
	return &postServiceImpl{
		postRepo:      postRepo,
		policy:        policy,
		notifications: notifications,
		clock:         clock,
		logger:        logger,
	}
}

// CreatePost publishes a post by a member in good standing
func (s *postServiceImpl) CreatePost(ctx context.Context, actor models.Actor, req *dto.CreatePostRequest) (*models.Post, error) {
	user, err := auth.RequireUser(actor)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireActiveUser(user, s.clock.now()); err != nil {
		return nil, err
	}

	content, err := screenContent(s.policy, "post", req.Content)
	if err != nil {
		return nil, err
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = defaultCategory
	}

	post := &models.Post{
		AuthorID: user.ID,
		Author:   models.SummaryOf(user),
		Content:  content,
		Category: category,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	s.logger.Info().Int64("postID", post.ID).Int64("authorID", user.ID).Msg("Post created")

	s.notifications.NotifyMentions(ctx, MentionInput{
		Sender: post.Author,
		Text:   post.Content,
		PostID: &post.ID,
	})
	return post, nil
}

// ListPosts returns a page of the feed as seen by actor
func (s *postServiceImpl) ListPosts(ctx context.Context, actor models.Actor, query *dto.PostFeedQuery, page helpers.Page) (*dto.PaginatedResponse, error) {
	filter := models.PostFilter{
		Category: strings.ToLower(strings.TrimSpace(query.Category)),
		AuthorID: query.AuthorID,
		Offset:   page.Offset(),
		Limit:    page.Limit,
	}

	posts, total, err := s.postRepo.List(ctx, filter, actor.Ref())
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	resp := helpers.NewPaginatedResponse(posts, total, page)
	return &resp, nil
}

// GetPost returns one active post
func (s *postServiceImpl) GetPost(ctx context.Context, actor models.Actor, id int64) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, actor.Ref())
	if err != nil {
		return nil, postNotFound(err)
	}
	return post, nil
}

// ListSavedPosts returns the caller's bookmarks
func (s *postServiceImpl) ListSavedPosts(ctx context.Context, actor models.Actor, page helpers.Page) (*dto.PaginatedResponse, error) {
	user, err := auth.RequireUser(actor)
	if err != nil {
		return nil, err
	}

	posts, total, err := s.postRepo.ListSaved(ctx, user.ID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("error listing saved posts: %w", err)
	}
	resp := helpers.NewPaginatedResponse(posts, total, page)
	return &resp, nil
}

// UpdatePost replaces the content of the caller's own post
func (s *postServiceImpl) UpdatePost(ctx context.Context, actor models.Actor, id int64, req *dto.UpdatePostRequest) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, actor.Ref())
	if err != nil {
		return nil, postNotFound(err)
	}
	if !auth.CanModifyPost(actor, post) {
		return nil, apperrors.NewForbiddenError("You can only edit your own posts")
	}
	if err := auth.RequireActiveUser(actor, s.clock.now()); err != nil {
		return nil, err
	}

	content, err := screenContent(s.policy, "post", req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.UpdateContent(ctx, id, content); err != nil {
		return nil, postNotFound(err)
	}

	return s.GetPost(ctx, actor, id)
}

// DeletePost soft-deletes a post. Authors may delete their own posts at any time.
func (s *postServiceImpl) DeletePost(ctx context.Context, actor models.Actor, id int64) error {
	post, err := s.postRepo.GetByID(ctx, id, actor.Ref())
	if err != nil {
		return postNotFound(err)
	}
	if !auth.CanDeletePost(actor, post) {
		return apperrors.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.SoftDelete(ctx, id); err != nil {
		return postNotFound(err)
	}
	s.logger.Info().Int64("postID", id).Str("actor", actor.Ref().String()).Msg("Post deleted")
	return nil
}

// VotePost toggles the caller's vote. Only a newly recorded upvote notifies the author.
func (s *postServiceImpl) VotePost(ctx context.Context, actor models.Actor, id int64, dir models.VoteDirection) (*models.VoteOutcome, error) {
	post, err := s.postRepo.GetByID(ctx, id, actor.Ref())
	if err != nil {
		return nil, postNotFound(err)
	}

	outcome, err := s.postRepo.Vote(ctx, id, actor.Ref(), dir)
	if err != nil {
		return nil, postNotFound(err)
	}
	metrics.VotesTotal.WithLabelValues("post", dir.String()).Inc()

	if outcome.Added && dir == models.VoteUp {
		sender := models.SummaryOf(actor)
		s.notifications.Notify(ctx, NotifyInput{
			Recipient: models.UserRef(post.AuthorID),
			Sender:    sender,
			Type:      models.NotificationUpvote,
			Title:     "New upvote",
			Message:   sender.Name + " upvoted your post",
			PostID:    &post.ID,
		})
	}
	return outcome, nil
}

// ToggleSave bookmarks or un-bookmarks a post for the caller
func (s *postServiceImpl) ToggleSave(ctx context.Context, actor models.Actor, id int64) (*dto.SaveResponse, error) {
	user, err := auth.RequireUser(actor)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, id, user.Ref()); err != nil {
		return nil, postNotFound(err)
	}

	saved, err := s.postRepo.ToggleSave(ctx, id, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error toggling bookmark: %w", err)
	}
	return &dto.SaveResponse{Saved: saved}, nil
}

// TogglePin pins or unpins a post. Admin only.
func (s *postServiceImpl) TogglePin(ctx context.Context, actor models.Actor, id int64) (*dto.PinResponse, error) {
	if !actor.IsPrivileged() {
		return nil, apperrors.NewForbiddenError("Only admins can pin posts")
	}

	pinned, err := s.postRepo.TogglePin(ctx, id)
	if err != nil {
		return nil, postNotFound(err)
	}
	return &dto.PinResponse{Pinned: pinned}, nil
}

// RecountComments reconciles the stored comment counter with the active comments
func (s *postServiceImpl) RecountComments(ctx context.Context, actor models.Actor, id int64) (*dto.RecountResponse, error) {
	if !actor.IsPrivileged() {
		return nil, apperrors.NewForbiddenError("Only admins can recount comments")
	}

	count, err := s.postRepo.RecountComments(ctx, id)
	if err != nil {
		return nil, postNotFound(err)
	}
	s.logger.Info().Int64("postID", id).Int("commentsCount", count).Msg("Comment count reconciled")
	return &dto.RecountResponse{PostID: id, CommentsCount: count}, nil
}

func postNotFound(err error) error {
	return notFoundAs(err, "Post not found")
}
