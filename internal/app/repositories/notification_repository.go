package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnet/internal/app/models"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

var notificationSender = newActorJoin("ns", "n.sender_kind", "n.sender_id")

func recipientIs(ref models.ActorRef) squirrel.Eq {
	return squirrel.Eq{"n.recipient_kind": string(ref.Kind), "n.recipient_id": ref.ID}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (recipient_kind, recipient_id, sender_kind, sender_id, type, title, message, post_id, comment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, is_read, created_at`

	err := r.db.QueryRow(ctx, query,
		string(n.Recipient.Kind), n.Recipient.ID,
		string(n.Sender.Kind), n.Sender.ID,
		string(n.Type), n.Title, n.Message, n.PostID, n.CommentID,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// List returns the recipient's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, recipient models.ActorRef, unreadOnly bool, offset uint64, limit int) ([]*models.Notification, int64, error) {
	where := squirrel.And{recipientIs(recipient)}
	if unreadOnly {
		where = append(where, squirrel.Eq{"n.is_read": false})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("notifications n").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %w", err)
	}

	b := psql.Select(
		"n.id", "n.recipient_kind", "n.recipient_id", "n.type", "n.title", "n.message",
		"n.post_id", "n.comment_id", "n.is_read", "n.created_at",
	).
		Columns(notificationSender.columns()...).
		From("notifications n")
	query, args, err := notificationSender.apply(b).
		Where(where).
		OrderBy("n.created_at DESC", "n.id DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var recipientKind, typ, senderKind string
		if err := rows.Scan(
			&n.ID, &recipientKind, &n.Recipient.ID, &typ, &n.Title, &n.Message,
			&n.PostID, &n.CommentID, &n.IsRead, &n.CreatedAt,
			&senderKind, &n.Sender.ID, &n.Sender.Name, &n.Sender.AvatarURL,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning notification: %w", err)
		}
		n.Recipient.Kind = models.ActorKind(recipientKind)
		n.Sender.Kind = models.ActorKind(senderKind)
		n.Type = models.NotificationType(typ)
		items = append(items, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating notifications: %w", err)
	}
	return items, total, nil
}

// UnreadCount counts the recipient's unread notifications
func (r *NotificationRepository) UnreadCount(ctx context.Context, recipient models.ActorRef) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_kind = $1 AND recipient_id = $2 AND is_read = FALSE`

	var count int64
	if err := r.db.QueryRow(ctx, query, string(recipient.Kind), recipient.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification read. A notification owned by someone else is
// reported as not found.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, recipient models.ActorRef) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_kind = $2 AND recipient_id = $3`

	tag, err := r.db.Exec(ctx, query, id, string(recipient.Kind), recipient.ID)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "mark notification read")
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient models.ActorRef) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE recipient_kind = $1 AND recipient_id = $2 AND is_read = FALSE`

	tag, err := r.db.Exec(ctx, query, string(recipient.Kind), recipient.ID)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes one of the recipient's notifications
func (r *NotificationRepository) Delete(ctx context.Context, id int64, recipient models.ActorRef) error {
	query := `DELETE FROM notifications WHERE id = $1 AND recipient_kind = $2 AND recipient_id = $3`

	tag, err := r.db.Exec(ctx, query, id, string(recipient.Kind), recipient.ID)
	if err != nil {
		return fmt.Errorf("error deleting notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "delete notification")
	}
	return nil
}
