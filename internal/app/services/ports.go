package services

import (
	"context"
	"time"

	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/repositories"
)

// The interfaces below are the storage operations each service needs. The concrete
// repositories in internal/app/repositories satisfy them; tests use testify mocks.

// UserStore reads and moderates user accounts
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	FindByNamePrefix(ctx context.Context, prefix string) (*models.User, error)
	ApplyBan(ctx context.Context, userID int64, status models.BanStatus, reason *string, expiresAt *time.Time, adminID int64) (*models.BanRecord, error)
	ClearBan(ctx context.Context, userID int64) (*models.BanRecord, error)
}

// AdminStore reads admin accounts
type AdminStore interface {
	GetAdminByID(ctx context.Context, id int64) (*models.Admin, error)
}

// PostStore persists posts, their votes and bookmarks
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64, viewer models.ActorRef) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter, viewer models.ActorRef) ([]*models.Post, int64, error)
	ListSaved(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Post, int64, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	SoftDelete(ctx context.Context, id int64) error
	Vote(ctx context.Context, postID int64, voter models.ActorRef, dir models.VoteDirection) (*models.VoteOutcome, error)
	ToggleSave(ctx context.Context, postID, userID int64) (bool, error)
	TogglePin(ctx context.Context, id int64) (bool, error)
	RecountComments(ctx context.Context, id int64) (int, error)
}

// CommentStore persists comments and their votes
type CommentStore interface {
	CreateWithCount(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64, viewer models.ActorRef) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID int64, q models.CommentQuery, viewer models.ActorRef) ([]*models.Comment, int64, error)
	ListReplies(ctx context.Context, parentID int64, offset uint64, limit int, viewer models.ActorRef) ([]*models.Comment, int64, error)
	ListByPost(ctx context.Context, postID int64, viewer models.ActorRef) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	SoftDelete(ctx context.Context, comment *models.Comment) error
	Vote(ctx context.Context, commentID int64, voter models.ActorRef, dir models.VoteDirection) (*models.VoteOutcome, error)
}

// ReportStore persists reports and the report-driven escalation
type ReportStore interface {
	CreateWithEscalation(ctx context.Context, report *models.Report, authorID int64, policy models.AutoBanPolicy, now time.Time) (*models.ReportOutcome, error)
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	List(ctx context.Context, status models.ReportStatus, offset uint64, limit int) ([]*models.Report, int64, error)
	ReportedUsers(ctx context.Context, offset uint64, limit, sampleSize int) ([]*models.ReportedUser, int64, error)
	Dismiss(ctx context.Context, id, adminID int64) (*models.Report, bool, error)
}

// ConnectionStore persists the connection handshake
type ConnectionStore interface {
	FindBetween(ctx context.Context, a, b int64) (*models.Connection, error)
	Create(ctx context.Context, conn *models.Connection) error
	GetByID(ctx context.Context, id int64) (*models.Connection, error)
	Respond(ctx context.Context, id int64, status models.ConnectionStatus) (*models.Connection, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f repositories.ConnectionFilter) ([]*models.Connection, int64, error)
}

// ConversationStore persists two-party conversations
type ConversationStore interface {
	GetOrCreate(ctx context.Context, a, b models.ActorRef) (*models.Conversation, error)
	GetByID(ctx context.Context, id int64) (*models.Conversation, error)
	ListForActor(ctx context.Context, ref models.ActorRef, offset uint64, limit int) ([]*models.ConversationSummary, int64, error)
}

// MessageStore persists direct messages
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID int64, offset uint64, limit int) ([]*models.Message, int64, error)
	MarkRead(ctx context.Context, conversationID int64, reader models.ActorRef) (int64, error)
	UnreadCount(ctx context.Context, ref models.ActorRef) (int64, error)
	Delete(ctx context.Context, msg *models.Message) error
}

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, recipient models.ActorRef, unreadOnly bool, offset uint64, limit int) ([]*models.Notification, int64, error)
	UnreadCount(ctx context.Context, recipient models.ActorRef) (int64, error)
	MarkRead(ctx context.Context, id int64, recipient models.ActorRef) error
	MarkAllRead(ctx context.Context, recipient models.ActorRef) (int64, error)
	Delete(ctx context.Context, id int64, recipient models.ActorRef) error
}

var (
	_ UserStore         = (*repositories.UserRepository)(nil)
	_ AdminStore        = (*repositories.AdminRepository)(nil)
	_ PostStore         = (*repositories.PostRepository)(nil)
	_ CommentStore      = (*repositories.CommentRepository)(nil)
	_ ReportStore       = (*repositories.ReportRepository)(nil)
	_ ConnectionStore   = (*repositories.ConnectionRepository)(nil)
	_ ConversationStore = (*repositories.ConversationRepository)(nil)
	_ MessageStore      = (*repositories.MessageRepository)(nil)
	_ NotificationStore = (*repositories.NotificationRepository)(nil)
)
