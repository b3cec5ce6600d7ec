package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/alumnet/internal/app/auth"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/contentpolicy"
	"github.com/yigit/alumnet/internal/pkg/helpers"
	"github.com/yigit/alumnet/internal/pkg/metrics"
)

// CommentService defines the interface for comment operations
type CommentService interface {
	CreateComment(ctx context.Context, actor models.Actor, req *dto.CreateCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, actor models.Actor, postID int64, query *dto.CommentListQuery, page helpers.Page) (*dto.PaginatedResponse, error)
	ListReplies(ctx context.Context, actor models.Actor, commentID int64, page helpers.Page) (*dto.PaginatedResponse, error)
	GetThread(ctx context.Context, actor models.Actor, postID int64) ([]*dto.CommentThreadNode, error)
	UpdateComment(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateCommentRequest) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor models.Actor, id int64) error
	VoteComment(ctx context.Context, actor models.Actor, id int64, dir models.VoteDirection) (*models.VoteOutcome, error)
}

// commentServiceImpl implements CommentService
type commentServiceImpl struct {
	commentRepo   CommentStore
	postRepo      PostStore
	policy        contentpolicy.ContentPolicy
	notifications NotificationService
	clock         Clock
	logger        zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(
	commentRepo CommentStore,
	postRepo PostStore,
	policy contentpolicy.ContentPolicy,
	notifications NotificationService,
	clock Clock,
	logger zerolog.Logger,
) CommentService {
	return &commentServiceImpl{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		policy:        policy,
		notifications: notifications,
		clock:         clock,
		logger:        logger,
	}
}

// canExpand reports whether replies below a comment at depth may be requested
func canExpand(depth int) bool {
	return depth+1 < models.MaxReplyDepth
}

// CreateComment adds a top-level comment or a reply
func (s *commentServiceImpl) CreateComment(ctx context.Context, actor models.Actor, req *dto.CreateCommentRequest) (*models.Comment, error) {
	if err := auth.RequireActiveUser(actor, s.clock.now()); err != nil {
		return nil, err
	}

	content, err := screenContent(s.policy, "comment", req.Content)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, req.PostID, actor.Ref())
	if err != nil {
		return nil, postNotFound(err)
	}

	comment := &models.Comment{
		PostID:  post.ID,
		Author:  models.SummaryOf(actor),
		Content: content,
	}

	var parent *models.Comment
	if req.ParentCommentID != nil {
		parent, err = s.commentRepo.GetByID(ctx, *req.ParentCommentID, actor.Ref())
		if err != nil {
			return nil, notFoundAs(err, "Parent comment not found")
		}
		if parent.PostID != post.ID {
			return nil, apperrors.NewValidationError("Parent comment belongs to a different post")
		}
		comment.ParentCommentID = &parent.ID
		comment.Depth = parent.Depth + 1
	}

	if err := s.commentRepo.CreateWithCount(ctx, comment); err != nil {
		return nil, notFoundAs(err, "Post not found")
	}

	s.logger.Info().
		Int64("commentID", comment.ID).
		Int64("postID", post.ID).
		Int("depth", comment.Depth).
		Msg("Comment created")

	if parent != nil {
		s.notifications.Notify(ctx, NotifyInput{
			Recipient: parent.Author.Ref(),
			Sender:    comment.Author,
			Type:      models.NotificationReply,
			Title:     "New reply",
			Message:   comment.Author.Name + " replied to your comment",
			PostID:    &post.ID,
			CommentID: &comment.ID,
		})
	} else {
		s.notifications.Notify(ctx, NotifyInput{
			Recipient: models.UserRef(post.AuthorID),
			Sender:    comment.Author,
			Type:      models.NotificationComment,
			Title:     "New comment",
			Message:   comment.Author.Name + " commented on your post",
			PostID:    &post.ID,
			CommentID: &comment.ID,
		})
	}
	s.notifications.NotifyMentions(ctx, MentionInput{
		Sender:    comment.Author,
		Text:      comment.Content,
		PostID:    &post.ID,
		CommentID: &comment.ID,
	})

	return comment, nil
}

// ListComments returns a page of the post's top-level comments. The default order is
// newest first.
func (s *commentServiceImpl) ListComments(ctx context.Context, actor models.Actor, postID int64, query *dto.CommentListQuery, page helpers.Page) (*dto.PaginatedResponse, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, actor.Ref()); err != nil {
		return nil, postNotFound(err)
	}

	q := models.CommentQuery{
		Sort:      models.CommentSortNew,
		Ascending: query.Order == "asc",
		Offset:    page.Offset(),
		Limit:     page.Limit,
	}
	if query.SortBy == string(models.CommentSortTop) {
		q.Sort = models.CommentSortTop
	}

	comments, total, err := s.commentRepo.ListTopLevel(ctx, postID, q, actor.Ref())
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	resp := helpers.NewPaginatedResponse(comments, total, page)
	return &resp, nil
}

// ListReplies returns a page of direct replies, oldest first. Expanding a comment at
// the maximum rendering depth is rejected.
func (s *commentServiceImpl) ListReplies(ctx context.Context, actor models.Actor, commentID int64, page helpers.Page) (*dto.PaginatedResponse, error) {
	parent, err := s.commentRepo.GetByID(ctx, commentID, actor.Ref())
	if err != nil {
		return nil, notFoundAs(err, "Comment not found")
	}
	if !canExpand(parent.Depth) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Replies cannot be expanded beyond depth %d", models.MaxReplyDepth))
	}

	replies, total, err := s.commentRepo.ListReplies(ctx, commentID, page.Offset(), page.Limit, actor.Ref())
	if err != nil {
		return nil, fmt.Errorf("error listing replies: %w", err)
	}

	items := make([]dto.ReplyResponse, 0, len(replies))
	for _, r := range replies {
		items = append(items, dto.ReplyResponse{Comment: *r, CanExpand: canExpand(r.Depth)})
	}
	resp := helpers.NewPaginatedResponse(items, total, page)
	return &resp, nil
}

// GetThread returns the post's active comments as a tree, oldest first at every level.
// Nodes at the last rendered depth carry HasMoreReplies instead of their children.
// Replies under a deleted comment are not reachable and are left out.
func (s *commentServiceImpl) GetThread(ctx context.Context, actor models.Actor, postID int64) ([]*dto.CommentThreadNode, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, actor.Ref()); err != nil {
		return nil, postNotFound(err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, actor.Ref())
	if err != nil {
		return nil, fmt.Errorf("error loading thread: %w", err)
	}
	return buildThread(comments), nil
}

// buildThread arranges comments, given oldest first, into a tree truncated at
// MaxReplyDepth levels
func buildThread(comments []*models.Comment) []*dto.CommentThreadNode {
	children := make(map[int64][]*models.Comment, len(comments))
	var roots []*models.Comment
	for _, c := range comments {
		if c.ParentCommentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentCommentID] = append(children[*c.ParentCommentID], c)
	}

	var build func(c *models.Comment, level int) *dto.CommentThreadNode
	build = func(c *models.Comment, level int) *dto.CommentThreadNode {
		node := &dto.CommentThreadNode{Comment: *c, Replies: []*dto.CommentThreadNode{}}
		kids := children[c.ID]
		if len(kids) == 0 {
			return node
		}
		if level+1 >= models.MaxReplyDepth {
			node.HasMoreReplies = true
			return node
		}
		for _, kid := range kids {
			node.Replies = append(node.Replies, build(kid, level+1))
		}
		return node
	}

	tree := make([]*dto.CommentThreadNode, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root, 0))
	}
	return tree
}

// UpdateComment replaces the content of the caller's own comment
func (s *commentServiceImpl) UpdateComment(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id, actor.Ref())
	if err != nil {
		return nil, notFoundAs(err, "Comment not found")
	}
	if !auth.CanModifyComment(actor, comment) {
		return nil, apperrors.NewForbiddenError("You can only edit your own comments")
	}
	if err := auth.RequireActiveUser(actor, s.clock.now()); err != nil {
		return nil, err
	}

	content, err := screenContent(s.policy, "comment", req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.UpdateContent(ctx, id, content); err != nil {
		return nil, notFoundAs(err, "Comment not found")
	}

	updated, err := s.commentRepo.GetByID(ctx, id, actor.Ref())
	if err != nil {
		return nil, notFoundAs(err, "Comment not found")
	}
	return updated, nil
}

// DeleteComment soft-deletes a comment: its author within 24 hours, an admin any time
func (s *commentServiceImpl) DeleteComment(ctx context.Context, actor models.Actor, id int64) error {
	comment, err := s.commentRepo.GetByID(ctx, id, actor.Ref())
	if err != nil {
		return notFoundAs(err, "Comment not found")
	}

	if !auth.CanDeleteComment(actor, comment, s.clock.now()) {
		if auth.CanModifyComment(actor, comment) {
			return apperrors.NewForbiddenError("Comments can only be deleted within 24 hours of posting")
		}
		return apperrors.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.SoftDelete(ctx, comment); err != nil {
		return notFoundAs(err, "Comment not found")
	}
	s.logger.Info().Int64("commentID", id).Str("actor", actor.Ref().String()).Msg("Comment deleted")
	return nil
}

// VoteComment toggles the caller's vote on a comment. Comment votes do not notify.
func (s *commentServiceImpl) VoteComment(ctx context.Context, actor models.Actor, id int64, dir models.VoteDirection) (*models.VoteOutcome, error) {
	outcome, err := s.commentRepo.Vote(ctx, id, actor.Ref(), dir)
	if err != nil {
		return nil, notFoundAs(err, "Comment not found")
	}
	metrics.VotesTotal.WithLabelValues("comment", dir.String()).Inc()
	return outcome, nil
}

// notFoundAs replaces a bare not-found error with one carrying message
func notFoundAs(err error, message string) error {
	if apperrors.Is(err, apperrors.ErrResourceNotFound) {
		return apperrors.NewResourceNotFoundError(message)
	}
	return err
}
