package services

import (
	"github.com/rs/zerolog"
	"github.com/yigit/alumnet/internal/app/repositories"
	"github.com/yigit/alumnet/internal/pkg/contentpolicy"
	"github.com/yigit/alumnet/internal/pkg/dispatch"
)

// Services defined in this package:
// - PostService: posts, the feed, votes, bookmarks and pins
// - CommentService: comments, replies, the thread view and comment votes
// - ModerationService: reports, report-driven bans and admin ban actions
// - NotificationService: asynchronous fan-out and the notification inbox
// - ConnectionService: the connection handshake between users
// - MessageService: two-party conversations and messages
type Services struct {
	PostService         PostService
	CommentService      CommentService
	ModerationService   ModerationService
	NotificationService NotificationService
	ConnectionService   ConnectionService
	MessageService      MessageService
}

// Deps are the shared collaborators of all services
type Deps struct {
	Repos      *repositories.Repositories
	Policy     contentpolicy.ContentPolicy
	Queue      dispatch.Queue
	Moderation ModerationConfig
	Clock      Clock
	Logger     zerolog.Logger
}

// NewServices wires every service from its repositories
func NewServices(d Deps) *Services {
	r := d.Repos
	logger := d.Logger

	notifications := NewNotificationService(r.NotificationRepository, r.UserRepository, d.Queue,
		logger.With().Str("service", "notification").Logger())

	return &Services{
		PostService: NewPostService(r.PostRepository, d.Policy, notifications, d.Clock,
			logger.With().Str("service", "post").Logger()),
		CommentService: NewCommentService(r.CommentRepository, r.PostRepository, d.Policy, notifications, d.Clock,
			logger.With().Str("service", "comment").Logger()),
		ModerationService: NewModerationService(r.ReportRepository, r.PostRepository, r.UserRepository, d.Moderation, d.Clock,
			logger.With().Str("service", "moderation").Logger()),
		NotificationService: notifications,
		ConnectionService: NewConnectionService(r.ConnectionRepository, r.UserRepository, notifications,
			logger.With().Str("service", "connection").Logger()),
		MessageService: NewMessageService(r.ConversationRepository, r.MessageRepository, r.UserRepository, r.AdminRepository,
			d.Policy, notifications, d.Clock, logger.With().Str("service", "message").Logger()),
	}
}
