package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	tokens "github.com/yigit/alumnet/internal/pkg/auth"
)

type stubUsers map[int64]*models.User

func (s stubUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

type stubAdmins map[int64]*models.Admin

func (s stubAdmins) GetAdminByID(_ context.Context, id int64) (*models.Admin, error) {
	if a, ok := s[id]; ok {
		return a, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

func claimsFor(kind models.ActorKind, sub string) *tokens.Claims {
	return &tokens.Claims{Kind: kind, RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
}

func newResolver() *ActorResolver {
	return NewActorResolver(
		stubUsers{1: {ID: 1, Name: "Jane"}},
		stubAdmins{1: {ID: 1, Name: "Ops"}, 9: {ID: 9, Name: "Root"}},
	)
}

func TestResolveUser(t *testing.T) {
	r := newResolver()
	ctx := context.Background()

	user, err := r.ResolveUser(ctx, claimsFor(models.ActorUser, "1"))
	require.NoError(t, err)
	require.Equal(t, "Jane", user.Name)

	_, err = r.ResolveUser(ctx, claimsFor(models.ActorAdmin, "1"))
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = r.ResolveUser(ctx, claimsFor(models.ActorUser, "404"))
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestResolveAdmin(t *testing.T) {
	r := newResolver()
	ctx := context.Background()

	admin, err := r.ResolveAdmin(ctx, claimsFor(models.ActorAdmin, "9"))
	require.NoError(t, err)
	require.True(t, admin.IsPrivileged())

	_, err = r.ResolveAdmin(ctx, claimsFor(models.ActorUser, "1"))
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestResolveAny(t *testing.T) {
	r := newResolver()
	ctx := context.Background()

	// id 1 exists in both tables: the kind claim decides
	actor, err := r.ResolveAny(ctx, claimsFor(models.ActorUser, "1"))
	require.NoError(t, err)
	require.Equal(t, models.UserRef(1), actor.Ref())

	actor, err = r.ResolveAny(ctx, claimsFor(models.ActorAdmin, "1"))
	require.NoError(t, err)
	require.Equal(t, models.AdminRef(1), actor.Ref())

	// untyped token falls back to the admin table
	actor, err = r.ResolveAny(ctx, claimsFor("", "9"))
	require.NoError(t, err)
	require.Equal(t, models.AdminRef(9), actor.Ref())

	// a typed user token never becomes an admin
	_, err = r.ResolveAny(ctx, claimsFor(models.ActorUser, "9"))
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = r.ResolveAny(ctx, claimsFor("", "77"))
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

type failingUsers struct{}

func (failingUsers) GetUserByID(context.Context, int64) (*models.User, error) {
	return nil, errors.New("connection reset")
}

func TestResolve_StoreFailureIsNotAuthError(t *testing.T) {
	r := NewActorResolver(failingUsers{}, stubAdmins{})

	_, err := r.Resolve(context.Background(), claimsFor(models.ActorUser, "1"), ModeAny)
	require.Error(t, err)
	require.False(t, errors.Is(err, apperrors.ErrUnauthenticated))
}

func TestCanDeleteComment(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	author := &models.User{ID: 5}
	other := &models.User{ID: 6}
	admin := &models.Admin{ID: 1}

	fresh := &models.Comment{Author: models.ActorSummary{Kind: models.ActorUser, ID: 5}, CreatedAt: now.Add(-23 * time.Hour)}
	stale := &models.Comment{Author: models.ActorSummary{Kind: models.ActorUser, ID: 5}, CreatedAt: now.Add(-25 * time.Hour)}

	require.True(t, CanDeleteComment(author, fresh, now))
	require.False(t, CanDeleteComment(author, stale, now))
	require.False(t, CanDeleteComment(other, fresh, now))
	require.True(t, CanDeleteComment(admin, stale, now))
}

func TestCanDeletePost(t *testing.T) {
	post := &models.Post{AuthorID: 5, CreatedAt: time.Now().Add(-24 * 365 * time.Hour)}

	require.True(t, CanDeletePost(&models.User{ID: 5}, post))
	require.False(t, CanDeletePost(&models.User{ID: 6}, post))
	require.True(t, CanDeletePost(&models.Admin{ID: 5}, post))
	// an admin shares the numeric id space with users but is not the author
	require.False(t, CanModifyPost(&models.Admin{ID: 5}, post))
}

func TestRequireActiveUser(t *testing.T) {
	now := time.Now()
	reason := "spam"
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	require.NoError(t, RequireActiveUser(&models.User{BanStatus: models.BanActive}, now))
	require.NoError(t, RequireActiveUser(&models.Admin{}, now))
	require.NoError(t, RequireActiveUser(&models.User{BanStatus: models.BanTemporary, BanExpiresAt: &past}, now))

	err := RequireActiveUser(&models.User{BanStatus: models.BanTemporary, BanExpiresAt: &future, BanReason: &reason}, now)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	require.Contains(t, err.Error(), "spam")

	err = RequireActiveUser(&models.User{BanStatus: models.BanSuspended}, now)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
