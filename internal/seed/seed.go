package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/auth"
)

// AdminStore is the slice of the admin repository the seeder needs
type AdminStore interface {
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
}

// DefaultAdmin describes the operator account created on first start
type DefaultAdmin struct {
	Email    string
	Name     string
	Password string
}

// CreateDefaultAdmin creates the default admin unless an admin with that email exists.
// An empty email or password disables seeding.
func CreateDefaultAdmin(ctx context.Context, admins AdminStore, def DefaultAdmin, lgr zerolog.Logger) error {
	if def.Email == "" || def.Password == "" {
		lgr.Debug().Msg("Default admin seeding disabled")
		return nil
	}

	existing, err := admins.GetAdminByEmail(ctx, def.Email)
	if err == nil && existing != nil {
		// the stored password is never overwritten from config
		if !auth.CheckPassword(existing.PasswordHash, def.Password) {
			lgr.Warn().Str("email", def.Email).Msg("Default admin exists with a password that differs from the configured one")
			return nil
		}
		lgr.Debug().Str("email", def.Email).Msg("Default admin already present")
		return nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return fmt.Errorf("check default admin: %w", err)
	}

	hash, err := auth.HashPassword(def.Password)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}

	name := def.Name
	if name == "" {
		name = "Platform Admin"
	}

	admin := &models.Admin{Email: def.Email, Name: name, PasswordHash: hash}
	if err := admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	lgr.Info().Int64("adminID", admin.ID).Str("email", admin.Email).Msg("Default admin created")
	return nil
}
