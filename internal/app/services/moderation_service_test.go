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

type moderationFixture struct {
	reports *mockReportStore
	posts   *mockPostStore
	users   *mockUserStore
	svc     ModerationService
}

func newModerationFixture() *moderationFixture {
	f := &moderationFixture{
		reports: new(mockReportStore),
		posts:   new(mockPostStore),
		users:   new(mockUserStore),
	}
	f.svc = NewModerationService(f.reports, f.posts, f.users, ModerationConfig{}, fixedClock, zerolog.Nop())
	return f
}

func TestReportPost_OwnPost(t *testing.T) {
	f := newModerationFixture()
	f.posts.On("GetByID", mock.Anything, int64(5), mock.Anything).Return(&models.Post{ID: 5, AuthorID: 1}, nil)

	_, err := f.svc.ReportPost(context.Background(), member(1, "Jane"), 5, &dto.ReportPostRequest{Reason: "spam"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	f.reports.AssertNotCalled(t, "CreateWithEscalation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportPost_Duplicate(t *testing.T) {
	f := newModerationFixture()
	f.posts.On("GetByID", mock.Anything, int64(5), mock.Anything).Return(&models.Post{ID: 5, AuthorID: 1}, nil)
	f.reports.On("CreateWithEscalation", mock.Anything, mock.Anything, int64(1), mock.Anything, testNow).
		Return(nil, apperrors.ErrResourceAlreadyExists)

	_, err := f.svc.ReportPost(context.Background(), member(2, "Bob"), 5, &dto.ReportPostRequest{Reason: "spam"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	require.Equal(t, "You have already reported this post", apperrors.MessageOf(err, ""))
}

func TestReportPost_UsesDefaultEscalationPolicy(t *testing.T) {
	f := newModerationFixture()
	f.posts.On("GetByID", mock.Anything, int64(5), mock.Anything).Return(&models.Post{ID: 5, AuthorID: 1}, nil)
	f.reports.On("CreateWithEscalation", mock.Anything,
		mock.MatchedBy(func(r *models.Report) bool {
			return r.PostID == 5 && r.ReporterID == 2 && r.Reason == models.ReasonSpam &&
				r.Description != nil && *r.Description == "same link everywhere"
		}),
		int64(1),
		models.AutoBanPolicy{Threshold: 3, Duration: 72 * time.Hour, Reason: DefaultModerationConfig().AutoBan.Reason},
		testNow,
	).Return(&models.ReportOutcome{ReportCount: 3, AutoBanned: true}, nil)

	resp, err := f.svc.ReportPost(context.Background(), member(2, "Bob"), 5, &dto.ReportPostRequest{
		Reason:      "spam",
		Description: "  same link everywhere ",
	})
	require.NoError(t, err)
	require.True(t, resp.Reported)
	f.reports.AssertExpectations(t)
}

func TestReportPost_AdminsCannotReport(t *testing.T) {
	f := newModerationFixture()
	_, err := f.svc.ReportPost(context.Background(), staff(1, "Ops"), 5, &dto.ReportPostRequest{Reason: "spam"})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestBanUser(t *testing.T) {
	admin := staff(9, "Ops")

	t.Run("requires admin", func(t *testing.T) {
		f := newModerationFixture()
		_, err := f.svc.BanUser(context.Background(), member(2, "Bob"), 1, &dto.BanUserRequest{Type: "suspended"})
		require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("staff role cannot be banned", func(t *testing.T) {
		f := newModerationFixture()
		target := member(1, "Jane")
		target.Role = models.RoleAdmin
		f.users.On("GetUserByID", mock.Anything, int64(1)).Return(target, nil)

		_, err := f.svc.BanUser(context.Background(), admin, 1, &dto.BanUserRequest{Type: "suspended", Reason: "x"})
		require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("temporary ban needs a duration", func(t *testing.T) {
		f := newModerationFixture()
		f.users.On("GetUserByID", mock.Anything, int64(1)).Return(member(1, "Jane"), nil)

		_, err := f.svc.BanUser(context.Background(), admin, 1, &dto.BanUserRequest{Type: "temp_banned", Reason: "x"})
		require.ErrorIs(t, err, apperrors.ErrValidationFailed)
		f.users.AssertNotCalled(t, "ApplyBan", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("temporary ban expires after the given days", func(t *testing.T) {
		f := newModerationFixture()
		until := testNow.Add(7 * 24 * time.Hour)
		f.users.On("GetUserByID", mock.Anything, int64(1)).Return(member(1, "Jane"), nil)
		f.users.On("ApplyBan", mock.Anything, int64(1), models.BanTemporary, ptr("spamming"), &until, int64(9)).
			Return(&models.BanRecord{UserID: 1, BanStatus: models.BanTemporary, BanExpiresAt: &until, ResolvedReports: 2}, nil)

		rec, err := f.svc.BanUser(context.Background(), admin, 1, &dto.BanUserRequest{Type: "temp_banned", Duration: 7, Reason: " spamming "})
		require.NoError(t, err)
		require.Equal(t, int64(2), rec.ResolvedReports)
	})

	t.Run("suspension has no expiry", func(t *testing.T) {
		f := newModerationFixture()
		f.users.On("GetUserByID", mock.Anything, int64(1)).Return(member(1, "Jane"), nil)
		f.users.On("ApplyBan", mock.Anything, int64(1), models.BanSuspended, ptr("abuse"), (*time.Time)(nil), int64(9)).
			Return(&models.BanRecord{UserID: 1, BanStatus: models.BanSuspended}, nil)

		rec, err := f.svc.BanUser(context.Background(), admin, 1, &dto.BanUserRequest{Type: "suspended", Reason: "abuse"})
		require.NoError(t, err)
		require.Equal(t, models.BanSuspended, rec.BanStatus)
	})

	t.Run("blank reason is stored as no reason", func(t *testing.T) {
		f := newModerationFixture()
		f.users.On("GetUserByID", mock.Anything, int64(1)).Return(member(1, "Jane"), nil)
		f.users.On("ApplyBan", mock.Anything, int64(1), models.BanSuspended, (*string)(nil), (*time.Time)(nil), int64(9)).
			Return(&models.BanRecord{UserID: 1, BanStatus: models.BanSuspended}, nil)

		_, err := f.svc.BanUser(context.Background(), admin, 1, &dto.BanUserRequest{Type: "suspended", Reason: "   "})
		require.NoError(t, err)
		f.users.AssertExpectations(t)
	})

	for _, banType := range []string{"active", "forever", ""} {
		t.Run("rejects ban type "+banType, func(t *testing.T) {
			f := newModerationFixture()
			f.users.On("GetUserByID", mock.Anything, int64(1)).Return(member(1, "Jane"), nil)

			_, err := f.svc.BanUser(context.Background(), admin, 1, &dto.BanUserRequest{Type: banType, Duration: 3, Reason: "x"})
			require.ErrorIs(t, err, apperrors.ErrValidationFailed)
			f.users.AssertNotCalled(t, "ApplyBan", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUnbanUser_ActiveUserIsUnchanged(t *testing.T) {
	f := newModerationFixture()
	u := member(1, "Jane")
	u.ReportCount = 4
	f.users.On("GetUserByID", mock.Anything, int64(1)).Return(u, nil)

	rec, err := f.svc.UnbanUser(context.Background(), staff(9, "Ops"), 1)
	require.NoError(t, err)
	require.Equal(t, models.BanActive, rec.BanStatus)
	require.Equal(t, 4, rec.ReportCount)
	f.users.AssertNotCalled(t, "ClearBan", mock.Anything, mock.Anything)
}

func TestUnbanUser_KeepsReportCount(t *testing.T) {
	f := newModerationFixture()
	u := member(1, "Jane")
	u.BanStatus = models.BanSuspended
	u.ReportCount = 5
	f.users.On("GetUserByID", mock.Anything, int64(1)).Return(u, nil)
	f.users.On("ClearBan", mock.Anything, int64(1)).Return(&models.BanRecord{UserID: 1, BanStatus: models.BanActive, ReportCount: 5}, nil)

	rec, err := f.svc.UnbanUser(context.Background(), staff(9, "Ops"), 1)
	require.NoError(t, err)
	require.Equal(t, models.BanActive, rec.BanStatus)
	require.Equal(t, 5, rec.ReportCount)
}

func TestDismissReport(t *testing.T) {
	f := newModerationFixture()
	f.reports.On("Dismiss", mock.Anything, int64(7), int64(9)).
		Return(&models.Report{ID: 7, Status: models.ReportDismissed}, true, nil)
	f.reports.On("Dismiss", mock.Anything, int64(8), int64(9)).
		Return(&models.Report{ID: 8, Status: models.ReportResolved}, false, nil)
	f.reports.On("Dismiss", mock.Anything, int64(404), int64(9)).
		Return(nil, false, apperrors.ErrResourceNotFound)

	r, err := f.svc.DismissReport(context.Background(), staff(9, "Ops"), 7)
	require.NoError(t, err)
	require.Equal(t, models.ReportDismissed, r.Status)

	_, err = f.svc.DismissReport(context.Background(), staff(9, "Ops"), 8)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.DismissReport(context.Background(), staff(9, "Ops"), 404)
	require.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestListReportedUsers_PassesSampleSize(t *testing.T) {
	f := newModerationFixture()
	f.reports.On("ReportedUsers", mock.Anything, uint64(0), 20, 5).Return([]*models.ReportedUser{}, int64(0), nil)

	_, err := f.svc.ListReportedUsers(context.Background(), staff(9, "Ops"), pageOf(1, 20))
	require.NoError(t, err)
	f.reports.AssertExpectations(t)

	_, err = f.svc.ListReportedUsers(context.Background(), member(1, "Jane"), pageOf(1, 20))
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
