package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/dispatch"
)

func TestNotify_SkipsSelf(t *testing.T) {
	q := &stubQueue{}
	svc := NewNotificationService(new(mockNotificationStore), new(mockUserStore), q, zerolog.Nop())
	jane := models.SummaryOf(member(1, "Jane"))

	svc.Notify(context.Background(), NotifyInput{Recipient: models.UserRef(1), Sender: jane, Type: models.NotificationUpvote})
	require.Empty(t, q.jobs)

	// an admin and a user sharing an id are different principals
	svc.Notify(context.Background(), NotifyInput{Recipient: models.AdminRef(1), Sender: jane, Type: models.NotificationMessage})
	require.Len(t, q.jobs, 1)
	require.Equal(t, TopicNotification, q.jobs[0].Topic)
}

func TestNotify_QueueFailureIsSwallowed(t *testing.T) {
	q := &stubQueue{err: dispatch.ErrQueueFull}
	svc := NewNotificationService(new(mockNotificationStore), new(mockUserStore), q, zerolog.Nop())

	require.NotPanics(t, func() {
		svc.Notify(context.Background(), NotifyInput{
			Recipient: models.UserRef(2),
			Sender:    models.SummaryOf(member(1, "Jane")),
			Type:      models.NotificationComment,
		})
	})
	require.Empty(t, q.jobs)
}

func TestNotify_SurvivesCancelledRequest(t *testing.T) {
	q := &stubQueue{}
	svc := NewNotificationService(new(mockNotificationStore), new(mockUserStore), q, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.Notify(ctx, NotifyInput{Recipient: models.UserRef(2), Sender: models.SummaryOf(member(1, "Jane"))})
	require.Len(t, q.jobs, 1)
}

func TestNotifyMentions_NothingToResolve(t *testing.T) {
	q := &stubQueue{}
	svc := NewNotificationService(new(mockNotificationStore), new(mockUserStore), q, zerolog.Nop())

	svc.NotifyMentions(context.Background(), MentionInput{Text: "mail me at jane@example.com"})
	require.Empty(t, q.jobs)
}

func TestHandle_StoresNotification(t *testing.T) {
	store := new(mockNotificationStore)
	svc := NewNotificationService(store, new(mockUserStore), &stubQueue{}, zerolog.Nop())

	in := NotifyInput{
		Recipient: models.UserRef(2),
		Sender:    models.SummaryOf(staff(1, "Ops")),
		Type:      models.NotificationMessage,
		Title:     "New message",
		Message:   "Ops: hi",
	}
	job, err := dispatch.NewJob(TopicNotification, in)
	require.NoError(t, err)

	store.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Recipient == models.UserRef(2) &&
			n.Sender.Kind == models.ActorAdmin &&
			n.Type == models.NotificationMessage &&
			n.Message == "Ops: hi"
	})).Return(nil).Once()

	require.NoError(t, svc.Handle(context.Background(), job))
	store.AssertExpectations(t)
}

func TestHandle_UnknownTopic(t *testing.T) {
	svc := NewNotificationService(new(mockNotificationStore), new(mockUserStore), &stubQueue{}, zerolog.Nop())
	err := svc.Handle(context.Background(), dispatch.Job{Topic: "nope", Payload: json.RawMessage(`{}`)})
	require.Error(t, err)
}

func TestHandle_MentionFanOut(t *testing.T) {
	store := new(mockNotificationStore)
	users := new(mockUserStore)
	svc := NewNotificationService(store, users, &stubQueue{}, zerolog.Nop())

	bob := member(2, "Bob Smith")
	users.On("FindByNamePrefix", mock.Anything, "bob").Return(bob, nil)
	users.On("FindByNamePrefix", mock.Anything, "bo").Return(bob, nil)
	users.On("FindByNamePrefix", mock.Anything, "jane").Return(member(1, "Jane"), nil)
	users.On("FindByNamePrefix", mock.Anything, "ghost").Return(nil, apperrors.ErrResourceNotFound)

	store.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Recipient == models.UserRef(2) && n.Type == models.NotificationMention && *n.PostID == 10
	})).Return(nil)

	job, err := dispatch.NewJob(TopicMentions, MentionInput{
		Sender: models.SummaryOf(member(1, "Jane")),
		Text:   "@bob @Bo @jane @ghost see you there",
		PostID: ptr(int64(10)),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Handle(context.Background(), job))
	store.AssertNumberOfCalls(t, "Create", 1)
}

func TestHandle_MentionLookupFailureIsReported(t *testing.T) {
	store := new(mockNotificationStore)
	users := new(mockUserStore)
	svc := NewNotificationService(store, users, &stubQueue{}, zerolog.Nop())

	users.On("FindByNamePrefix", mock.Anything, "bob").Return(nil, errors.New("connection reset"))
	users.On("FindByNamePrefix", mock.Anything, "ann").Return(member(3, "Ann"), nil)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	job, err := dispatch.NewJob(TopicMentions, MentionInput{
		Sender: models.SummaryOf(member(1, "Jane")),
		Text:   "@bob @ann",
	})
	require.NoError(t, err)

	err = svc.Handle(context.Background(), job)
	require.ErrorContains(t, err, "connection reset")
	store.AssertNumberOfCalls(t, "Create", 1)
}

func TestInbox_ScopedNotFound(t *testing.T) {
	store := new(mockNotificationStore)
	svc := NewNotificationService(store, new(mockUserStore), &stubQueue{}, zerolog.Nop())
	store.On("MarkRead", mock.Anything, int64(5), models.UserRef(2)).Return(apperrors.ErrResourceNotFound)
	store.On("Delete", mock.Anything, int64(5), models.UserRef(2)).Return(apperrors.ErrResourceNotFound)

	err := svc.MarkRead(context.Background(), 5, models.UserRef(2))
	require.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	require.Equal(t, "Notification not found", apperrors.MessageOf(err, ""))

	require.ErrorIs(t, svc.Delete(context.Background(), 5, models.UserRef(2)), apperrors.ErrResourceNotFound)
}
