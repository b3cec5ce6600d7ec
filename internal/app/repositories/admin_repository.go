package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnet/internal/app/models"
)

// AdminRepository handles database operations for admins
type AdminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

func scanAdmin(row rowScanner) (*models.Admin, error) {
	var a models.Admin
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.AvatarURL, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAdminByID retrieves an admin by id
func (r *AdminRepository) GetAdminByID(ctx context.Context, id int64) (*models.Admin, error) {
	query := `SELECT id, email, name, avatar_url, password_hash, created_at FROM admins WHERE id = $1`

	admin, err := scanAdmin(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "get admin")
	}
	return admin, nil
}

// GetAdminByEmail retrieves an admin by email, case-insensitively
func (r *AdminRepository) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT id, email, name, avatar_url, password_hash, created_at FROM admins WHERE LOWER(email) = LOWER($1)`

	admin, err := scanAdmin(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, notFound(err, "get admin by email")
	}
	return admin, nil
}

// Create inserts an admin
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	query := `
		INSERT INTO admins (email, name, avatar_url, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, admin.Email, admin.Name, admin.AvatarURL, admin.PasswordHash).
		Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}
