package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/db"
)

const userColumns = `id, email, name, avatar_url, role, ban_status, ban_reason, ban_expires_at, report_count, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var role, status string
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.AvatarURL,
		&role,
		&status,
		&u.BanReason,
		&u.BanExpiresAt,
		&u.ReportCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.UserRole(role)
	u.BanStatus = models.BanStatus(status)
	return &u, nil
}

// GetUserByID retrieves a user by id
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "get user")
	}
	return user, nil
}

// Create inserts a user. Registration lives outside this service; this serves seeding and tests.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleMember
	}
	if user.BanStatus == "" {
		user.BanStatus = models.BanActive
	}

	query := `
		INSERT INTO users (email, name, avatar_url, role, ban_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, user.Email, user.Name, user.AvatarURL, string(user.Role), string(user.BanStatus)).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// FindByNamePrefix returns the lowest-id user whose name starts with prefix, ignoring case
func (r *UserRepository) FindByNamePrefix(ctx context.Context, prefix string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(name) LIKE $1 ESCAPE '\' ORDER BY id LIMIT 1`

	user, err := scanUser(r.db.QueryRow(ctx, query, likePrefix(strings.ToLower(prefix))))
	if err != nil {
		return nil, notFound(err, "find user by name prefix")
	}
	return user, nil
}

// ApplyBan sets the ban fields and resolves the user's pending reports in one transaction.
// A nil reason leaves ban_reason NULL.
func (r *UserRepository) ApplyBan(ctx context.Context, userID int64, status models.BanStatus, reason *string, expiresAt *time.Time, adminID int64) (*models.BanRecord, error) {
	var record *models.BanRecord
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			UPDATE users
			SET ban_status = $2, ban_reason = $3, ban_expires_at = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING id, ban_status, ban_reason, ban_expires_at, report_count`

		rec, err := scanBanRecord(tx.QueryRow(ctx, query, userID, string(status), reason, expiresAt))
		if err != nil {
			return notFound(err, "apply ban")
		}

		resolve := `
			UPDATE reports r
			SET status = 'resolved', reviewed_by = $2, updated_at = NOW()
			FROM posts p
			WHERE r.post_id = p.id AND p.author_id = $1 AND r.status = 'pending'`
		tag, err := tx.Exec(ctx, resolve, userID, adminID)
		if err != nil {
			return fmt.Errorf("resolve pending reports: %w", err)
		}

		rec.ResolvedReports = tag.RowsAffected()
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ClearBan returns the user to active. The report counter is kept.
func (r *UserRepository) ClearBan(ctx context.Context, userID int64) (*models.BanRecord, error) {
	query := `
		UPDATE users
		SET ban_status = 'active', ban_reason = NULL, ban_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING id, ban_status, ban_reason, ban_expires_at, report_count`

	rec, err := scanBanRecord(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, notFound(err, "clear ban")
	}
	return rec, nil
}

func scanBanRecord(row rowScanner) (*models.BanRecord, error) {
	var rec models.BanRecord
	var status string
	if err := row.Scan(&rec.UserID, &status, &rec.BanReason, &rec.BanExpiresAt, &rec.ReportCount); err != nil {
		return nil, err
	}
	rec.BanStatus = models.BanStatus(status)
	return &rec, nil
}

// likePrefix escapes LIKE wildcards in s and appends %
func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s) + "%"
}
