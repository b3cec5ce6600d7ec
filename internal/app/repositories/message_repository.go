package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/db"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

var messageSender = newActorJoin("ms", "m.sender_kind", "m.sender_id")

func selectMessages() squirrel.SelectBuilder {
	b := psql.Select("m.id", "m.conversation_id", "m.content", "m.is_read", "m.read_at", "m.created_at").
		Columns(messageSender.columns()...).
		From("messages m")
	return messageSender.apply(b)
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var m models.Message
	var kind string
	err := row.Scan(
		&m.ID, &m.ConversationID, &m.Content, &m.IsRead, &m.ReadAt, &m.CreatedAt,
		&kind, &m.Sender.ID, &m.Sender.Name, &m.Sender.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	m.Sender.Kind = models.ActorKind(kind)
	return &m, nil
}

// Create inserts the message and moves the conversation's last-message pointer to it
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		insert := `
			INSERT INTO messages (conversation_id, sender_kind, sender_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING id, is_read, created_at`

		err := tx.QueryRow(ctx, insert, msg.ConversationID, string(msg.Sender.Kind), msg.Sender.ID, msg.Content).
			Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("error creating message: %w", err)
		}

		update := `UPDATE conversations SET last_message_id = $2, last_message_time = $3, updated_at = NOW() WHERE id = $1`
		tag, err := tx.Exec(ctx, update, msg.ConversationID, msg.ID, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("error updating last message: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return notFound(pgx.ErrNoRows, "update last message")
		}
		return nil
	})
}

// GetByID retrieves a message by id
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query, args, err := selectMessages().Where(squirrel.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	msg, err := scanMessage(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "get message")
	}
	return msg, nil
}

// ListByConversation returns a page of the conversation's messages, newest first
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID int64, offset uint64, limit int) ([]*models.Message, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting messages: %w", err)
	}

	query, args, err := selectMessages().
		Where(squirrel.Eq{"m.conversation_id": conversationID}).
		OrderBy("m.created_at DESC", "m.id DESC").
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

	messages := make([]*models.Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, total, nil
}

// MarkRead marks every unread message of the conversation that reader did not send
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID int64, reader models.ActorRef) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = TRUE, read_at = NOW()
		WHERE conversation_id = $1 AND is_read = FALSE
		  AND NOT (sender_kind = $2 AND sender_id = $3)`

	tag, err := r.db.Exec(ctx, query, conversationID, string(reader.Kind), reader.ID)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UnreadCount counts unread messages sent to ref across all of their conversations
func (r *MessageRepository) UnreadCount(ctx context.Context, ref models.ActorRef) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE m.is_read = FALSE
		  AND ((c.participant_a_kind = $1 AND c.participant_a_id = $2)
		    OR (c.participant_b_kind = $1 AND c.participant_b_id = $2))
		  AND NOT (m.sender_kind = $1 AND m.sender_id = $2)`

	var count int64
	if err := r.db.QueryRow(ctx, query, string(ref.Kind), ref.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return count, nil
}

// Delete hard-deletes the message. When it was the conversation's last message, the
// pointer moves to the newest remaining message, or to null when none is left.
func (r *MessageRepository) Delete(ctx context.Context, msg *models.Message) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		// read the pointer before the delete; the foreign key nulls it on delete
		var lastID *int64
		lock := `SELECT last_message_id FROM conversations WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRow(ctx, lock, msg.ConversationID).Scan(&lastID); err != nil {
			return notFound(err, "lock conversation")
		}

		tag, err := tx.Exec(ctx, `DELETE FROM messages WHERE id = $1`, msg.ID)
		if err != nil {
			return fmt.Errorf("error deleting message: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return notFound(pgx.ErrNoRows, "delete message")
		}

		if lastID == nil || *lastID != msg.ID {
			return nil
		}

		recompute := `
			UPDATE conversations c
			SET (last_message_id, last_message_time) = (
				SELECT m.id, m.created_at FROM messages m
				WHERE m.conversation_id = c.id
				ORDER BY m.created_at DESC, m.id DESC
				LIMIT 1
			), updated_at = NOW()
			WHERE c.id = $1`
		if _, err := tx.Exec(ctx, recompute, msg.ConversationID); err != nil {
			return fmt.Errorf("error recomputing last message: %w", err)
		}
		return nil
	})
}
