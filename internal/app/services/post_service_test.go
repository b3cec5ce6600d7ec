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
)

func newPostServiceForTest(posts *mockPostStore, notifier *recordingNotifier) PostService {
	return NewPostService(posts, blockList{"scoundrel"}, notifier, fixedClock, zerolog.Nop())
}

func TestCreatePost_DefaultsCategoryAndQueuesMentions(t *testing.T) {
	posts := new(mockPostStore)
	notifier := &recordingNotifier{}
	svc := newPostServiceForTest(posts, notifier)
	author := member(1, "Jane Doe")

	posts.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Category == "general" && p.Content == "hello @bob" && p.AuthorID == 1
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Post).ID = 77
	}).Return(nil)

	post, err := svc.CreatePost(context.Background(), author, &dto.CreatePostRequest{Content: "  hello @bob  "})
	require.NoError(t, err)
	require.Equal(t, int64(77), post.ID)
	require.Len(t, notifier.mentions, 1)
	require.Equal(t, int64(77), *notifier.mentions[0].PostID)
	posts.AssertExpectations(t)
}

func TestCreatePost_Rejections(t *testing.T) {
	banned := member(2, "Banned")
	banned.BanStatus = models.BanTemporary
	banned.BanExpiresAt = ptr(testNow.Add(time.Hour))

	expired := member(3, "Expired")
	expired.BanStatus = models.BanTemporary
	expired.BanExpiresAt = ptr(testNow.Add(-time.Hour))

	cases := []struct {
		name    string
		actor   models.Actor
		content string
		want    error
	}{
		{"admin cannot post", staff(1, "Ops"), "hi", apperrors.ErrPermissionDenied},
		{"temporarily banned", banned, "hi", apperrors.ErrPermissionDenied},
		{"blank content", member(1, "Jane"), "   ", apperrors.ErrValidationFailed},
		{"blocked word", member(1, "Jane"), "you Scoundrel", apperrors.ErrValidationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posts := new(mockPostStore)
			svc := newPostServiceForTest(posts, &recordingNotifier{})

			_, err := svc.CreatePost(context.Background(), tc.actor, &dto.CreatePostRequest{Content: tc.content})
			require.ErrorIs(t, err, tc.want)
			posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("expired ban no longer restricts", func(t *testing.T) {
		posts := new(mockPostStore)
		posts.On("Create", mock.Anything, mock.Anything).Return(nil)
		svc := newPostServiceForTest(posts, &recordingNotifier{})

		_, err := svc.CreatePost(context.Background(), expired, &dto.CreatePostRequest{Content: "back again"})
		require.NoError(t, err)
	})
}

func TestVotePost_NotifiesOnlyNewUpvotes(t *testing.T) {
	voter := member(2, "Bob")
	post := &models.Post{ID: 10, AuthorID: 1}

	cases := []struct {
		name     string
		dir      models.VoteDirection
		added    bool
		notified int
	}{
		{"new upvote", models.VoteUp, true, 1},
		{"upvote toggled off", models.VoteUp, false, 0},
		{"downvote", models.VoteDown, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posts := new(mockPostStore)
			notifier := &recordingNotifier{}
			svc := newPostServiceForTest(posts, notifier)

			posts.On("GetByID", mock.Anything, int64(10), voter.Ref()).Return(post, nil)
			posts.On("Vote", mock.Anything, int64(10), voter.Ref(), tc.dir).
				Return(&models.VoteOutcome{Upvotes: 1, Added: tc.added}, nil)

			_, err := svc.VotePost(context.Background(), voter, 10, tc.dir)
			require.NoError(t, err)
			require.Len(t, notifier.notified, tc.notified)
			if tc.notified > 0 {
				n := notifier.notified[0]
				require.Equal(t, models.UserRef(1), n.Recipient)
				require.Equal(t, models.NotificationUpvote, n.Type)
				require.Equal(t, int64(10), *n.PostID)
			}
		})
	}
}

func TestVotePost_MissingPost(t *testing.T) {
	posts := new(mockPostStore)
	svc := newPostServiceForTest(posts, &recordingNotifier{})
	posts.On("GetByID", mock.Anything, int64(404), mock.Anything).Return(nil, apperrors.ErrResourceNotFound)

	_, err := svc.VotePost(context.Background(), member(1, "Jane"), 404, models.VoteUp)
	require.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	require.Equal(t, "Post not found", apperrors.MessageOf(err, ""))
}

func TestUpdatePost_OnlyAuthor(t *testing.T) {
	posts := new(mockPostStore)
	svc := newPostServiceForTest(posts, &recordingNotifier{})
	posts.On("GetByID", mock.Anything, int64(5), mock.Anything).Return(&models.Post{ID: 5, AuthorID: 1}, nil)

	_, err := svc.UpdatePost(context.Background(), member(2, "Bob"), 5, &dto.UpdatePostRequest{Content: "x"})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.UpdatePost(context.Background(), staff(1, "Ops"), 5, &dto.UpdatePostRequest{Content: "x"})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	posts.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePost_AuthorOrAdmin(t *testing.T) {
	posts := new(mockPostStore)
	svc := newPostServiceForTest(posts, &recordingNotifier{})
	posts.On("GetByID", mock.Anything, int64(5), mock.Anything).Return(&models.Post{ID: 5, AuthorID: 1}, nil)
	posts.On("SoftDelete", mock.Anything, int64(5)).Return(nil)

	require.ErrorIs(t, svc.DeletePost(context.Background(), member(2, "Bob"), 5), apperrors.ErrPermissionDenied)
	require.NoError(t, svc.DeletePost(context.Background(), member(1, "Jane"), 5))
	require.NoError(t, svc.DeletePost(context.Background(), staff(9, "Ops"), 5))
	posts.AssertNumberOfCalls(t, "SoftDelete", 2)
}

func TestAdminOnlyPostActions(t *testing.T) {
	posts := new(mockPostStore)
	svc := newPostServiceForTest(posts, &recordingNotifier{})

	_, err := svc.TogglePin(context.Background(), member(1, "Jane"), 5)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = svc.RecountComments(context.Background(), member(1, "Jane"), 5)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	posts.On("TogglePin", mock.Anything, int64(5)).Return(true, nil)
	posts.On("RecountComments", mock.Anything, int64(5)).Return(3, nil)

	pin, err := svc.TogglePin(context.Background(), staff(1, "Ops"), 5)
	require.NoError(t, err)
	require.True(t, pin.Pinned)

	recount, err := svc.RecountComments(context.Background(), staff(1, "Ops"), 5)
	require.NoError(t, err)
	require.Equal(t, &dto.RecountResponse{PostID: 5, CommentsCount: 3}, recount)
}

func TestToggleSave_MembersOnly(t *testing.T) {
	posts := new(mockPostStore)
	svc := newPostServiceForTest(posts, &recordingNotifier{})

	_, err := svc.ToggleSave(context.Background(), staff(1, "Ops"), 5)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	posts.On("GetByID", mock.Anything, int64(5), models.UserRef(1)).Return(&models.Post{ID: 5}, nil)
	posts.On("ToggleSave", mock.Anything, int64(5), int64(1)).Return(true, nil)
	resp, err := svc.ToggleSave(context.Background(), member(1, "Jane"), 5)
	require.NoError(t, err)
	require.True(t, resp.Saved)
}
