package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnet/internal/app/models"
)

const conversationColumns = `id, participant_a_kind, participant_a_id, participant_b_kind, participant_b_id,
	last_message_id, last_message_time, created_at, updated_at`

// ConversationRepository handles database operations for direct conversations
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	var c models.Conversation
	var aKind, bKind string
	err := row.Scan(
		&c.ID, &aKind, &c.ParticipantA.ID, &bKind, &c.ParticipantB.ID,
		&c.LastMessageID, &c.LastMessageTime, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ParticipantA.Kind = models.ActorKind(aKind)
	c.ParticipantB.Kind = models.ActorKind(bKind)
	return &c, nil
}

// GetOrCreate returns the conversation between a and b, creating it on first contact.
// Concurrent callers for the same pair converge on one row through the pair_key constraint.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, a, b models.ActorRef) (*models.Conversation, error) {
	first, second := models.OrderedPair(a, b)
	key := models.PairKey(a, b)

	insert := `
		INSERT INTO conversations (participant_a_kind, participant_a_id, participant_b_kind, participant_b_id, pair_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pair_key) DO NOTHING`
	if _, err := r.db.Exec(ctx, insert, string(first.Kind), first.ID, string(second.Kind), second.ID, key); err != nil {
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}

	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE pair_key = $1`
	conv, err := scanConversation(r.db.QueryRow(ctx, query, key))
	if err != nil {
		return nil, notFound(err, "get conversation by pair")
	}
	return conv, nil
}

// GetByID retrieves a conversation by id
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	conv, err := scanConversation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "get conversation")
	}
	return conv, nil
}

var (
	conversationOther = newActorJoin("o", "cv.other_kind", "cv.other_id")
	lastMessageSender = newActorJoin("ls", "m.sender_kind", "m.sender_id")
)

// ListForActor returns the actor's conversations, most recently active first, with the
// counterpart's summary, the last message and the number of unread messages sent to them
func (r *ConversationRepository) ListForActor(ctx context.Context, ref models.ActorRef, offset uint64, limit int) ([]*models.ConversationSummary, int64, error) {
	mine := `((participant_a_kind = $1 AND participant_a_id = $2) OR (participant_b_kind = $1 AND participant_b_id = $2))`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM conversations WHERE `+mine, string(ref.Kind), ref.ID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting conversations: %w", err)
	}

	query := fmt.Sprintf(`
		WITH cv AS (
			SELECT c.*,
			       CASE WHEN c.participant_a_kind = $1 AND c.participant_a_id = $2
			            THEN c.participant_b_kind ELSE c.participant_a_kind END AS other_kind,
			       CASE WHEN c.participant_a_kind = $1 AND c.participant_a_id = $2
			            THEN c.participant_b_id ELSE c.participant_a_id END AS other_id
			FROM conversations c
			WHERE %s
		)
		SELECT cv.id, cv.participant_a_kind, cv.participant_a_id, cv.participant_b_kind, cv.participant_b_id,
		       cv.last_message_id, cv.last_message_time, cv.created_at, cv.updated_at,
		       %s,
		       m.id, m.content, m.is_read, m.read_at, m.created_at,
		       %s,
		       (SELECT COUNT(*) FROM messages um
		        WHERE um.conversation_id = cv.id AND um.is_read = FALSE
		          AND NOT (um.sender_kind = $1 AND um.sender_id = $2))
		FROM cv
		%s
		LEFT JOIN messages m ON m.id = cv.last_message_id
		%s
		ORDER BY cv.last_message_time DESC NULLS LAST, cv.id DESC
		LIMIT $3 OFFSET $4`,
		mine,
		joinColumns(conversationOther),
		joinColumns(lastMessageSender),
		conversationOther.sqlJoins(),
		lastMessageSender.sqlJoins(),
	)

	rows, err := r.db.Query(ctx, query, string(ref.Kind), ref.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	summaries := make([]*models.ConversationSummary, 0)
	for rows.Next() {
		var s models.ConversationSummary
		var aKind, bKind, otherKind string
		var (
			msgID                   *int64
			msgContent              *string
			msgRead                 *bool
			msgReadAt, msgCreatedAt *time.Time
			senderKind              *string
			senderID                *int64
			sender                  models.ActorSummary
		)
		err := rows.Scan(
			&s.ID, &aKind, &s.ParticipantA.ID, &bKind, &s.ParticipantB.ID,
			&s.LastMessageID, &s.LastMessageTime, &s.CreatedAt, &s.UpdatedAt,
			&otherKind, &s.Other.ID, &s.Other.Name, &s.Other.AvatarURL,
			&msgID, &msgContent, &msgRead, &msgReadAt, &msgCreatedAt,
			&senderKind, &senderID, &sender.Name, &sender.AvatarURL,
			&s.UnreadCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning conversation: %w", err)
		}
		s.ParticipantA.Kind = models.ActorKind(aKind)
		s.ParticipantB.Kind = models.ActorKind(bKind)
		s.Other.Kind = models.ActorKind(otherKind)

		if msgID != nil {
			sender.Kind = models.ActorKind(*senderKind)
			sender.ID = *senderID
			msg := &models.Message{
				ID:             *msgID,
				ConversationID: s.ID,
				Sender:         sender,
				Content:        *msgContent,
				IsRead:         *msgRead,
				ReadAt:         msgReadAt,
			}
			if msgCreatedAt != nil {
				msg.CreatedAt = *msgCreatedAt
			}
			s.LastMessage = msg
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating conversations: %w", err)
	}
	return summaries, total, nil
}

func joinColumns(j actorJoin) string {
	return strings.Join(j.columns(), ", ")
}
