package auth

import (
	"context"
	"errors"

	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	tokens "github.com/yigit/alumnet/internal/pkg/auth"
	"github.com/yigit/alumnet/internal/pkg/logger"
)

// Mode selects which principal kinds a route accepts
type Mode int

const (
	// ModeUser accepts users only
	ModeUser Mode = iota
	// ModeAdmin accepts admins only
	ModeAdmin
	// ModeAny accepts either, trying users first
	ModeAny
)

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "user"
	case ModeAdmin:
		return "admin"
	default:
		return "any"
	}
}

// UserFinder loads users by id
type UserFinder interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// AdminFinder loads admins by id
type AdminFinder interface {
	GetAdminByID(ctx context.Context, id int64) (*models.Admin, error)
}

var errNoPrincipal = apperrors.NewUnauthenticatedError("No account matches the provided credentials")

// ActorResolver turns verified token claims into the acting principal. The row is
// loaded on every request so ban status changes apply immediately.
type ActorResolver struct {
	users  UserFinder
	admins AdminFinder
}

// NewActorResolver creates a new ActorResolver
func NewActorResolver(users UserFinder, admins AdminFinder) *ActorResolver {
	return &ActorResolver{users: users, admins: admins}
}

// Resolve dispatches on mode
func (r *ActorResolver) Resolve(ctx context.Context, claims *tokens.Claims, mode Mode) (models.Actor, error) {
	switch mode {
	case ModeUser:
		return r.ResolveUser(ctx, claims)
	case ModeAdmin:
		return r.ResolveAdmin(ctx, claims)
	default:
		return r.ResolveAny(ctx, claims)
	}
}

// ResolveUser requires the claims to name an existing user
func (r *ActorResolver) ResolveUser(ctx context.Context, claims *tokens.Claims) (*models.User, error) {
	ref, err := claims.ActorRef()
	if err != nil {
		return nil, err
	}
	if ref.Kind != models.ActorUser {
		return nil, apperrors.NewUnauthenticatedError("This action requires a user account")
	}
	return r.loadUser(ctx, ref.ID)
}

// ResolveAdmin requires the claims to name an existing admin
func (r *ActorResolver) ResolveAdmin(ctx context.Context, claims *tokens.Claims) (*models.Admin, error) {
	ref, err := claims.ActorRef()
	if err != nil {
		return nil, err
	}
	if ref.Kind != models.ActorAdmin {
		return nil, apperrors.NewUnauthenticatedError("This action requires an admin account")
	}
	return r.loadAdmin(ctx, ref.ID)
}

// ResolveAny accepts either principal. Tokens without a kind claim are looked up as a
// user first and then as an admin.
func (r *ActorResolver) ResolveAny(ctx context.Context, claims *tokens.Claims) (models.Actor, error) {
	ref, err := claims.ActorRef()
	if err != nil {
		return nil, err
	}

	if ref.Kind == models.ActorAdmin {
		return r.loadAdmin(ctx, ref.ID)
	}

	user, err := r.loadUser(ctx, ref.ID)
	if err == nil {
		return user, nil
	}
	if claims.Kind != "" || !errors.Is(err, apperrors.ErrUnauthenticated) {
		return nil, err
	}
	return r.loadAdmin(ctx, ref.ID)
}

func (r *ActorResolver) loadUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, errNoPrincipal
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error loading user for request")
		return nil, err
	}
	return user, nil
}

func (r *ActorResolver) loadAdmin(ctx context.Context, id int64) (*models.Admin, error) {
	admin, err := r.admins.GetAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, errNoPrincipal
		}
		logger.Error().Err(err).Int64("adminID", id).Msg("Error loading admin for request")
		return nil, err
	}
	return admin, nil
}
