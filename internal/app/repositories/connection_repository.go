package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/dberrors"
)

const connectionColumns = `id, requester_id, recipient_id, status, created_at, updated_at`

// ConnectionRepository handles database operations for user connections
type ConnectionRepository struct {
	db *pgxpool.Pool
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(db *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// ConnectionFilter selects the connections listed for one user
type ConnectionFilter struct {
	UserID int64
	Status models.ConnectionStatus
	// IncomingOnly restricts the list to records where UserID is the recipient
	IncomingOnly bool
	Offset       uint64
	Limit        int
}

func scanConnection(row rowScanner) (*models.Connection, error) {
	var c models.Connection
	var status string
	if err := row.Scan(&c.ID, &c.RequesterID, &c.RecipientID, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = models.ConnectionStatus(status)
	return &c, nil
}

// FindBetween returns the record of the unordered pair, whichever side requested
func (r *ConnectionRepository) FindBetween(ctx context.Context, a, b int64) (*models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE LEAST(requester_id, recipient_id) = LEAST($1::BIGINT, $2::BIGINT)
		  AND GREATEST(requester_id, recipient_id) = GREATEST($1::BIGINT, $2::BIGINT)`

	conn, err := scanConnection(r.db.QueryRow(ctx, query, a, b))
	if err != nil {
		return nil, notFound(err, "find connection")
	}
	return conn, nil
}

// Create inserts a pending connection. A record for the same pair maps to
// apperrors.ErrResourceAlreadyExists.
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	query := `
		INSERT INTO connections (requester_id, recipient_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING ` + connectionColumns

	created, err := scanConnection(r.db.QueryRow(ctx, query, conn.RequesterID, conn.RecipientID))
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		return fmt.Errorf("error creating connection: %w", err)
	}
	*conn = *created
	return nil
}

// GetByID retrieves a connection by id
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`

	conn, err := scanConnection(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "get connection")
	}
	return conn, nil
}

// Respond moves a pending connection to status. It returns ErrResourceNotFound when
// the record is gone or no longer pending.
func (r *ConnectionRepository) Respond(ctx context.Context, id int64, status models.ConnectionStatus) (*models.Connection, error) {
	query := `
		UPDATE connections
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + connectionColumns

	conn, err := scanConnection(r.db.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		return nil, notFound(err, "respond to connection")
	}
	return conn, nil
}

// Delete removes a connection record
func (r *ConnectionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "delete connection")
	}
	return nil
}

// List returns the user's connections with the counterpart's summary, newest first
func (r *ConnectionRepository) List(ctx context.Context, f ConnectionFilter) ([]*models.Connection, int64, error) {
	where := squirrel.And{squirrel.Eq{"c.status": string(f.Status)}}
	if f.IncomingOnly {
		where = append(where, squirrel.Eq{"c.recipient_id": f.UserID})
	} else {
		where = append(where, squirrel.Or{
			squirrel.Eq{"c.requester_id": f.UserID},
			squirrel.Eq{"c.recipient_id": f.UserID},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("connections c").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting connections: %w", err)
	}

	query, args, err := psql.Select(
		"c.id", "c.requester_id", "c.recipient_id", "c.status", "c.created_at", "c.updated_at",
		"o.id", "o.name", "COALESCE(o.avatar_url, '')",
	).
		From("connections c").
		Join("users o ON o.id = CASE WHEN c.requester_id = ? THEN c.recipient_id ELSE c.requester_id END", f.UserID).
		Where(where).
		OrderBy("c.updated_at DESC", "c.id DESC").
		Limit(uint64(f.Limit)).
		Offset(f.Offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	conns := make([]*models.Connection, 0)
	for rows.Next() {
		var c models.Connection
		var status string
		other := models.ActorSummary{Kind: models.ActorUser}
		if err := rows.Scan(
			&c.ID, &c.RequesterID, &c.RecipientID, &status, &c.CreatedAt, &c.UpdatedAt,
			&other.ID, &other.Name, &other.AvatarURL,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning connection: %w", err)
		}
		c.Status = models.ConnectionStatus(status)
		c.Other = &other
		conns = append(conns, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating connections: %w", err)
	}
	return conns, total, nil
}
