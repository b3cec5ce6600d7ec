package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	AdminRepository        *AdminRepository
	PostRepository         *PostRepository
	CommentRepository      *CommentRepository
	ReportRepository       *ReportRepository
	ConnectionRepository   *ConnectionRepository
	ConversationRepository *ConversationRepository
	MessageRepository      *MessageRepository
	NotificationRepository *NotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		AdminRepository:        NewAdminRepository(db),
		PostRepository:         NewPostRepository(db),
		CommentRepository:      NewCommentRepository(db),
		ReportRepository:       NewReportRepository(db),
		ConnectionRepository:   NewConnectionRepository(db),
		ConversationRepository: NewConversationRepository(db),
		MessageRepository:      NewMessageRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
