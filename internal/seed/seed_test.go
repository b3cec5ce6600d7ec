package seed

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/auth"
)

type fakeAdmins struct {
	byEmail map[string]*models.Admin
	lookErr error
	created []*models.Admin
}

func (f *fakeAdmins) GetAdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	if f.lookErr != nil {
		return nil, f.lookErr
	}
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f *fakeAdmins) Create(_ context.Context, admin *models.Admin) error {
	admin.ID = int64(len(f.created) + 1)
	f.created = append(f.created, admin)
	return nil
}

func TestCreateDefaultAdmin(t *testing.T) {
	def := DefaultAdmin{Email: "ops@alumni.example.edu", Password: "changeme"}

	t.Run("creates hashed admin", func(t *testing.T) {
		store := &fakeAdmins{}
		require.NoError(t, CreateDefaultAdmin(context.Background(), store, def, zerolog.Nop()))
		require.Len(t, store.created, 1)
		require.Equal(t, "Platform Admin", store.created[0].Name)
		require.True(t, auth.CheckPassword(store.created[0].PasswordHash, "changeme"))
	})

	t.Run("existing admin untouched", func(t *testing.T) {
		hash, err := auth.HashPassword(def.Password)
		require.NoError(t, err)
		store := &fakeAdmins{byEmail: map[string]*models.Admin{def.Email: {ID: 9, PasswordHash: hash}}}

		var logs bytes.Buffer
		require.NoError(t, CreateDefaultAdmin(context.Background(), store, def, zerolog.New(&logs)))
		require.Empty(t, store.created)
		require.NotContains(t, logs.String(), `"level":"warn"`)
	})

	t.Run("existing admin with another password is reported", func(t *testing.T) {
		hash, err := auth.HashPassword("rotated-by-operator")
		require.NoError(t, err)
		store := &fakeAdmins{byEmail: map[string]*models.Admin{def.Email: {ID: 9, PasswordHash: hash}}}

		var logs bytes.Buffer
		require.NoError(t, CreateDefaultAdmin(context.Background(), store, def, zerolog.New(&logs)))
		require.Empty(t, store.created)
		require.Contains(t, logs.String(), `"level":"warn"`)
		require.Contains(t, logs.String(), def.Email)
	})

	t.Run("disabled without password", func(t *testing.T) {
		store := &fakeAdmins{}
		require.NoError(t, CreateDefaultAdmin(context.Background(), store, DefaultAdmin{Email: def.Email}, zerolog.Nop()))
		require.Empty(t, store.created)
	})

	t.Run("lookup failure", func(t *testing.T) {
		store := &fakeAdmins{lookErr: errors.New("connection reset")}
		err := CreateDefaultAdmin(context.Background(), store, def, zerolog.Nop())
		require.ErrorContains(t, err, "connection reset")
		require.Empty(t, store.created)
	})
}
