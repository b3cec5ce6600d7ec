package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/helpers"
)

type commentFixture struct {
	comments *mockCommentStore
	posts    *mockPostStore
	notifier *recordingNotifier
	svc      CommentService
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		comments: new(mockCommentStore),
		posts:    new(mockPostStore),
		notifier: &recordingNotifier{},
	}
	f.svc = NewCommentService(f.comments, f.posts, blockList{"scoundrel"}, f.notifier, fixedClock, zerolog.Nop())
	return f
}

func TestCreateComment_TopLevelNotifiesPostAuthor(t *testing.T) {
	f := newCommentFixture()
	commenter := member(2, "Bob")
	f.posts.On("GetByID", mock.Anything, int64(1), commenter.Ref()).Return(&models.Post{ID: 1, AuthorID: 1}, nil)
	f.comments.On("CreateWithCount", mock.Anything, mock.MatchedBy(func(c *models.Comment) bool {
		return c.ParentCommentID == nil && c.Depth == 0
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Comment).ID = 50
	}).Return(nil)

	c, err := f.svc.CreateComment(context.Background(), commenter, &dto.CreateCommentRequest{PostID: 1, Content: "nice"})
	require.NoError(t, err)
	require.Equal(t, int64(50), c.ID)

	require.Len(t, f.notifier.notified, 1)
	n := f.notifier.notified[0]
	require.Equal(t, models.UserRef(1), n.Recipient)
	require.Equal(t, models.NotificationComment, n.Type)
	require.Equal(t, int64(50), *n.CommentID)
	require.Len(t, f.notifier.mentions, 1)
}

func TestCreateComment_ReplyNotifiesParentAuthor(t *testing.T) {
	f := newCommentFixture()
	admin := staff(3, "Ops")
	parent := &models.Comment{
		ID:     20,
		PostID: 1,
		Depth:  4,
		Author: models.ActorSummary{Kind: models.ActorUser, ID: 2, Name: "Bob"},
	}
	f.posts.On("GetByID", mock.Anything, int64(1), admin.Ref()).Return(&models.Post{ID: 1, AuthorID: 1}, nil)
	f.comments.On("GetByID", mock.Anything, int64(20), admin.Ref()).Return(parent, nil)
	f.comments.On("CreateWithCount", mock.Anything, mock.Anything).Return(nil)

	c, err := f.svc.CreateComment(context.Background(), admin, &dto.CreateCommentRequest{
		PostID: 1, Content: "deep reply", ParentCommentID: ptr(int64(20)),
	})
	require.NoError(t, err)
	require.Equal(t, 5, c.Depth, "storage depth is not capped")
	require.Equal(t, models.ActorAdmin, c.Author.Kind)

	require.Len(t, f.notifier.notified, 1)
	require.Equal(t, models.UserRef(2), f.notifier.notified[0].Recipient)
	require.Equal(t, models.NotificationReply, f.notifier.notified[0].Type)
}

func TestCreateComment_ParentOnAnotherPost(t *testing.T) {
	f := newCommentFixture()
	author := member(2, "Bob")
	f.posts.On("GetByID", mock.Anything, int64(1), mock.Anything).Return(&models.Post{ID: 1}, nil)
	f.comments.On("GetByID", mock.Anything, int64(20), mock.Anything).Return(&models.Comment{ID: 20, PostID: 9}, nil)

	_, err := f.svc.CreateComment(context.Background(), author, &dto.CreateCommentRequest{
		PostID: 1, Content: "x", ParentCommentID: ptr(int64(20)),
	})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	f.comments.AssertNotCalled(t, "CreateWithCount", mock.Anything, mock.Anything)
}

func TestCreateComment_SuspendedUser(t *testing.T) {
	f := newCommentFixture()
	u := member(2, "Bob")
	u.BanStatus = models.BanSuspended

	_, err := f.svc.CreateComment(context.Background(), u, &dto.CreateCommentRequest{PostID: 1, Content: "x"})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	require.Contains(t, apperrors.MessageOf(err, ""), "suspended")
}

func TestListComments_DefaultsToNewestFirst(t *testing.T) {
	f := newCommentFixture()
	viewer := member(2, "Bob")
	page := helpers.Page{Number: 2, Limit: 10}
	f.posts.On("GetByID", mock.Anything, int64(1), mock.Anything).Return(&models.Post{ID: 1}, nil)
	f.comments.On("ListTopLevel", mock.Anything, int64(1), models.CommentQuery{
		Sort: models.CommentSortNew, Offset: 10, Limit: 10,
	}, viewer.Ref()).Return([]*models.Comment{}, int64(0), nil)

	_, err := f.svc.ListComments(context.Background(), viewer, 1, &dto.CommentListQuery{}, page)
	require.NoError(t, err)
	f.comments.AssertExpectations(t)
}

func TestListReplies_DepthCap(t *testing.T) {
	f := newCommentFixture()
	viewer := member(2, "Bob")
	f.comments.On("GetByID", mock.Anything, int64(40), mock.Anything).Return(&models.Comment{ID: 40, Depth: 4}, nil)

	_, err := f.svc.ListReplies(context.Background(), viewer, 40, helpers.Page{Number: 1, Limit: 10})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	f.comments.On("GetByID", mock.Anything, int64(30), mock.Anything).Return(&models.Comment{ID: 30, Depth: 3}, nil)
	f.comments.On("ListReplies", mock.Anything, int64(30), uint64(0), 10, viewer.Ref()).Return([]*models.Comment{
		{ID: 31, Depth: 4},
		{ID: 32, Depth: 4},
	}, int64(2), nil)

	resp, err := f.svc.ListReplies(context.Background(), viewer, 30, helpers.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	items := resp.Items.([]dto.ReplyResponse)
	require.Len(t, items, 2)
	require.False(t, items[0].CanExpand, "replies at the last level cannot be expanded")
}

func TestBuildThread_TruncatesAtMaxDepth(t *testing.T) {
	// a chain of seven comments, each replying to the previous one
	var chain []*models.Comment
	for i := int64(1); i <= 7; i++ {
		c := &models.Comment{ID: i, Depth: int(i - 1)}
		if i > 1 {
			c.ParentCommentID = ptr(i - 1)
		}
		chain = append(chain, c)
	}
	sibling := &models.Comment{ID: 100}
	chain = append(chain, sibling)

	tree := buildThread(chain)
	require.Len(t, tree, 2)
	require.Equal(t, int64(100), tree[1].ID)
	require.Empty(t, tree[1].Replies)
	require.False(t, tree[1].HasMoreReplies)

	node := tree[0]
	levels := 1
	for len(node.Replies) > 0 {
		require.Len(t, node.Replies, 1)
		node = node.Replies[0]
		levels++
	}
	require.Equal(t, models.MaxReplyDepth, levels)
	require.Equal(t, int64(5), node.ID)
	require.True(t, node.HasMoreReplies)
}

func TestBuildThread_OrphanedRepliesAreOmitted(t *testing.T) {
	tree := buildThread([]*models.Comment{
		{ID: 1},
		{ID: 3, ParentCommentID: ptr(int64(2))},
	})
	require.Len(t, tree, 1)
	require.Empty(t, tree[0].Replies)
}

func TestDeleteComment_EditWindow(t *testing.T) {
	author := member(2, "Bob")
	mine := func(age time.Duration) *models.Comment {
		return &models.Comment{
			ID:        60,
			Author:    models.ActorSummary{Kind: models.ActorUser, ID: 2},
			CreatedAt: testNow.Add(-age),
		}
	}

	cases := []struct {
		name  string
		actor models.Actor
		age   time.Duration
		want  error
	}{
		{"author within the window", author, 23 * time.Hour, nil},
		{"author after the window", author, 25 * time.Hour, apperrors.ErrPermissionDenied},
		{"admin after the window", staff(1, "Ops"), 25 * time.Hour, nil},
		{"another member", member(3, "Eve"), time.Hour, apperrors.ErrPermissionDenied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCommentFixture()
			c := mine(tc.age)
			f.comments.On("GetByID", mock.Anything, int64(60), mock.Anything).Return(c, nil)
			f.comments.On("SoftDelete", mock.Anything, c).Return(nil)

			err := f.svc.DeleteComment(context.Background(), tc.actor, 60)
			if tc.want == nil {
				require.NoError(t, err)
				f.comments.AssertCalled(t, "SoftDelete", mock.Anything, c)
				return
			}
			require.ErrorIs(t, err, tc.want)
			f.comments.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
		})
	}
}

func TestVoteComment_DoesNotNotify(t *testing.T) {
	f := newCommentFixture()
	voter := member(2, "Bob")
	f.comments.On("Vote", mock.Anything, int64(60), voter.Ref(), models.VoteUp).
		Return(&models.VoteOutcome{Upvotes: 1, HasUpvoted: true, Added: true}, nil)

	out, err := f.svc.VoteComment(context.Background(), voter, 60, models.VoteUp)
	require.NoError(t, err)
	require.True(t, out.HasUpvoted)
	require.Empty(t, f.notifier.notified)
}
