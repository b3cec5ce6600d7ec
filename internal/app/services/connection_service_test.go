package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/app/repositories"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
)

type connectionFixture struct {
	conns    *mockConnectionStore
	users    *mockUserStore
	notifier *recordingNotifier
	svc      ConnectionService
}

func newConnectionFixture() *connectionFixture {
	f := &connectionFixture{
		conns:    new(mockConnectionStore),
		users:    new(mockUserStore),
		notifier: &recordingNotifier{},
	}
	f.svc = NewConnectionService(f.conns, f.users, f.notifier, zerolog.Nop())
	return f
}

func TestRequestConnection(t *testing.T) {
	jane := member(1, "Jane")

	t.Run("self", func(t *testing.T) {
		f := newConnectionFixture()
		_, err := f.svc.RequestConnection(context.Background(), jane, &dto.ConnectionRequest{RecipientID: 1})
		require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		f := newConnectionFixture()
		f.users.On("GetUserByID", mock.Anything, int64(2)).Return(nil, apperrors.ErrResourceNotFound)
		_, err := f.svc.RequestConnection(context.Background(), jane, &dto.ConnectionRequest{RecipientID: 2})
		require.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("any existing record blocks", func(t *testing.T) {
		for _, status := range []models.ConnectionStatus{models.ConnectionPending, models.ConnectionAccepted, models.ConnectionRejected} {
			f := newConnectionFixture()
			f.users.On("GetUserByID", mock.Anything, int64(2)).Return(member(2, "Bob"), nil)
			f.conns.On("FindBetween", mock.Anything, int64(1), int64(2)).
				Return(&models.Connection{ID: 3, RequesterID: 2, RecipientID: 1, Status: status}, nil)

			_, err := f.svc.RequestConnection(context.Background(), jane, &dto.ConnectionRequest{RecipientID: 2})
			require.ErrorIs(t, err, apperrors.ErrValidationFailed, string(status))
			f.conns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		}
	})

	t.Run("lost race on the unique pair", func(t *testing.T) {
		f := newConnectionFixture()
		f.users.On("GetUserByID", mock.Anything, int64(2)).Return(member(2, "Bob"), nil)
		f.conns.On("FindBetween", mock.Anything, int64(1), int64(2)).Return(nil, apperrors.ErrResourceNotFound)
		f.conns.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrResourceAlreadyExists)

		_, err := f.svc.RequestConnection(context.Background(), jane, &dto.ConnectionRequest{RecipientID: 2})
		require.ErrorIs(t, err, apperrors.ErrValidationFailed)
		require.Empty(t, f.notifier.notified)
	})

	t.Run("creates a pending request and notifies", func(t *testing.T) {
		f := newConnectionFixture()
		f.users.On("GetUserByID", mock.Anything, int64(2)).Return(member(2, "Bob"), nil)
		f.conns.On("FindBetween", mock.Anything, int64(1), int64(2)).Return(nil, apperrors.ErrResourceNotFound)
		f.conns.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Connection) bool {
			return c.RequesterID == 1 && c.RecipientID == 2
		})).Run(func(args mock.Arguments) {
			c := args.Get(1).(*models.Connection)
			c.ID = 3
			c.Status = models.ConnectionPending
		}).Return(nil)

		conn, err := f.svc.RequestConnection(context.Background(), jane, &dto.ConnectionRequest{RecipientID: 2})
		require.NoError(t, err)
		require.Equal(t, models.ConnectionPending, conn.Status)
		require.Len(t, f.notifier.notified, 1)
		require.Equal(t, models.UserRef(2), f.notifier.notified[0].Recipient)
		require.Equal(t, models.NotificationConnection, f.notifier.notified[0].Type)
	})

	t.Run("admins have no connections", func(t *testing.T) {
		f := newConnectionFixture()
		_, err := f.svc.RequestConnection(context.Background(), staff(1, "Ops"), &dto.ConnectionRequest{RecipientID: 2})
		require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestRespondToConnection(t *testing.T) {
	pending := func() *models.Connection {
		return &models.Connection{ID: 3, RequesterID: 1, RecipientID: 2, Status: models.ConnectionPending}
	}

	t.Run("only the recipient", func(t *testing.T) {
		f := newConnectionFixture()
		f.conns.On("GetByID", mock.Anything, int64(3)).Return(pending(), nil)

		_, err := f.svc.AcceptConnection(context.Background(), member(1, "Jane"), 3)
		require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		_, err = f.svc.RejectConnection(context.Background(), member(9, "Eve"), 3)
		require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("already answered", func(t *testing.T) {
		f := newConnectionFixture()
		c := pending()
		c.Status = models.ConnectionAccepted
		f.conns.On("GetByID", mock.Anything, int64(3)).Return(c, nil)

		_, err := f.svc.RejectConnection(context.Background(), member(2, "Bob"), 3)
		require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("concurrent response", func(t *testing.T) {
		f := newConnectionFixture()
		f.conns.On("GetByID", mock.Anything, int64(3)).Return(pending(), nil)
		f.conns.On("Respond", mock.Anything, int64(3), models.ConnectionAccepted).Return(nil, apperrors.ErrResourceNotFound)

		_, err := f.svc.AcceptConnection(context.Background(), member(2, "Bob"), 3)
		require.ErrorIs(t, err, apperrors.ErrValidationFailed)
		require.Empty(t, f.notifier.notified)
	})

	t.Run("accept notifies the requester", func(t *testing.T) {
		f := newConnectionFixture()
		accepted := pending()
		accepted.Status = models.ConnectionAccepted
		f.conns.On("GetByID", mock.Anything, int64(3)).Return(pending(), nil)
		f.conns.On("Respond", mock.Anything, int64(3), models.ConnectionAccepted).Return(accepted, nil)

		conn, err := f.svc.AcceptConnection(context.Background(), member(2, "Bob"), 3)
		require.NoError(t, err)
		require.Equal(t, models.ConnectionAccepted, conn.Status)
		require.Len(t, f.notifier.notified, 1)
		require.Equal(t, models.UserRef(1), f.notifier.notified[0].Recipient)
	})

	t.Run("reject is silent", func(t *testing.T) {
		f := newConnectionFixture()
		rejected := pending()
		rejected.Status = models.ConnectionRejected
		f.conns.On("GetByID", mock.Anything, int64(3)).Return(pending(), nil)
		f.conns.On("Respond", mock.Anything, int64(3), models.ConnectionRejected).Return(rejected, nil)

		_, err := f.svc.RejectConnection(context.Background(), member(2, "Bob"), 3)
		require.NoError(t, err)
		require.Empty(t, f.notifier.notified)
	})
}

func TestDeleteConnection_EitherParty(t *testing.T) {
	f := newConnectionFixture()
	f.conns.On("GetByID", mock.Anything, int64(3)).
		Return(&models.Connection{ID: 3, RequesterID: 1, RecipientID: 2, Status: models.ConnectionRejected}, nil)
	f.conns.On("Delete", mock.Anything, int64(3)).Return(nil)

	require.ErrorIs(t, f.svc.DeleteConnection(context.Background(), member(9, "Eve"), 3), apperrors.ErrPermissionDenied)
	require.NoError(t, f.svc.DeleteConnection(context.Background(), member(2, "Bob"), 3))
	require.NoError(t, f.svc.DeleteConnection(context.Background(), member(1, "Jane"), 3))
}

func TestGetStatus(t *testing.T) {
	f := newConnectionFixture()
	f.conns.On("FindBetween", mock.Anything, int64(2), int64(1)).
		Return(&models.Connection{ID: 3, RequesterID: 1, RecipientID: 2, Status: models.ConnectionPending}, nil)
	f.conns.On("FindBetween", mock.Anything, int64(2), int64(5)).Return(nil, apperrors.ErrResourceNotFound)

	state, err := f.svc.GetStatus(context.Background(), member(2, "Bob"), 1)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionPending, state.Status)
	require.False(t, state.IsRequester)
	require.Equal(t, int64(3), *state.ConnectionID)

	state, err = f.svc.GetStatus(context.Background(), member(2, "Bob"), 5)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionNone, state.Status)
	require.Nil(t, state.ConnectionID)

	state, err = f.svc.GetStatus(context.Background(), member(2, "Bob"), 2)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionNone, state.Status)
}

func TestListConnections_DefaultsToAccepted(t *testing.T) {
	f := newConnectionFixture()
	f.conns.On("List", mock.Anything, repositories.ConnectionFilter{
		UserID: 2, Status: models.ConnectionAccepted, Limit: 20,
	}).Return([]*models.Connection{}, int64(0), nil)
	f.conns.On("List", mock.Anything, repositories.ConnectionFilter{
		UserID: 2, Status: models.ConnectionPending, IncomingOnly: true, Limit: 20,
	}).Return([]*models.Connection{}, int64(0), nil)

	_, err := f.svc.ListConnections(context.Background(), member(2, "Bob"), &dto.ConnectionListQuery{}, pageOf(1, 20))
	require.NoError(t, err)
	_, err = f.svc.ListIncomingRequests(context.Background(), member(2, "Bob"), pageOf(1, 20))
	require.NoError(t, err)
	f.conns.AssertExpectations(t)
}
