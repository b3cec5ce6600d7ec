package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/yigit/alumnet/internal/app/auth"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/contentpolicy"
	"github.com/yigit/alumnet/internal/pkg/helpers"
	"github.com/yigit/alumnet/internal/pkg/metrics"
)

// MessageService defines the interface for direct messaging
type MessageService interface {
	StartConversation(ctx context.Context, actor models.Actor, req *dto.CreateConversationRequest) (*models.ConversationSummary, error)
	ListConversations(ctx context.Context, actor models.Actor, page helpers.Page) (*dto.PaginatedResponse, error)
	SendMessage(ctx context.Context, actor models.Actor, req *dto.SendMessageRequest) (*models.Message, error)
	GetMessages(ctx context.Context, actor models.Actor, conversationID int64, page helpers.Page) (*dto.PaginatedResponse, error)
	MarkConversationRead(ctx context.Context, actor models.Actor, conversationID int64) (*dto.MarkReadResponse, error)
	UnreadCount(ctx context.Context, actor models.Actor) (int64, error)
	DeleteMessage(ctx context.Context, actor models.Actor, id int64) error
}

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	conversationRepo ConversationStore
	messageRepo      MessageStore
	userRepo         UserStore
	adminRepo        AdminStore
	policy           contentpolicy.ContentPolicy
	notifications    NotificationService
	clock            Clock
	logger           zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	conversationRepo ConversationStore,
	messageRepo MessageStore,
	userRepo UserStore,
	adminRepo AdminStore,
	policy contentpolicy.ContentPolicy,
	notifications NotificationService,
	clock Clock,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		adminRepo:        adminRepo,
		policy:           policy,
		notifications:    notifications,
		clock:            clock,
		logger:           logger,
	}
}

// StartConversation returns the caller's conversation with a participant, creating it
// on first contact
func (s *messageServiceImpl) StartConversation(ctx context.Context, actor models.Actor, req *dto.CreateConversationRequest) (*models.ConversationSummary, error) {
	kind, err := models.ParseActorKind(req.ParticipantKind)
	if err != nil {
		return nil, apperrors.NewValidationError("participantKind must be user or admin")
	}
	target := models.ActorRef{Kind: kind, ID: req.ParticipantID}
	if target == actor.Ref() {
		return nil, apperrors.NewValidationError("You cannot start a conversation with yourself")
	}

	participant, err := s.lookup(ctx, target)
	if err != nil {
		return nil, err
	}

	conv, err := s.conversationRepo.GetOrCreate(ctx, actor.Ref(), target)
	if err != nil {
		return nil, fmt.Errorf("error opening conversation: %w", err)
	}
	return &models.ConversationSummary{Conversation: *conv, Other: models.SummaryOf(participant)}, nil
}

func (s *messageServiceImpl) lookup(ctx context.Context, ref models.ActorRef) (models.Actor, error) {
	if ref.Kind == models.ActorAdmin {
		admin, err := s.adminRepo.GetAdminByID(ctx, ref.ID)
		if err != nil {
			return nil, notFoundAs(err, "Admin not found")
		}
		return admin, nil
	}
	user, err := s.userRepo.GetUserByID(ctx, ref.ID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	return user, nil
}

// ListConversations returns the caller's conversations, most recently active first
func (s *messageServiceImpl) ListConversations(ctx context.Context, actor models.Actor, page helpers.Page) (*dto.PaginatedResponse, error) {
	items, total, err := s.conversationRepo.ListForActor(ctx, actor.Ref(), page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, page)
	return &resp, nil
}

// participantConversation loads a conversation the caller takes part in
func (s *messageServiceImpl) participantConversation(ctx context.Context, actor models.Actor, id int64) (*models.Conversation, error) {
	conv, err := s.conversationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Conversation not found")
	}
	if !conv.HasParticipant(actor.Ref()) {
		return nil, apperrors.NewForbiddenError("You are not a participant of this conversation")
	}
	return conv, nil
}

// SendMessage appends a message and notifies the other participant. Restricted users
// cannot send; admins are never restricted.
func (s *messageServiceImpl) SendMessage(ctx context.Context, actor models.Actor, req *dto.SendMessageRequest) (*models.Message, error) {
	content, err := screenContent(s.policy, "message", req.Content)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireActiveUser(actor, s.clock.now()); err != nil {
		return nil, err
	}

	conv, err := s.participantConversation(ctx, actor, req.ConversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		Sender:         models.SummaryOf(actor),
		Content:        content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("error sending message: %w", err)
	}
	metrics.MessagesSentTotal.Inc()

	s.notifications.Notify(ctx, NotifyInput{
		Recipient: conv.OtherParticipant(actor.Ref()),
		Sender:    msg.Sender,
		Type:      models.NotificationMessage,
		Title:     "New message",
		Message:   msg.Sender.Name + ": " + excerpt(msg.Content, 100),
	})
	return msg, nil
}

// GetMessages returns a page of the conversation in chronological order, newest page
// first, and marks the counterpart's messages read
func (s *messageServiceImpl) GetMessages(ctx context.Context, actor models.Actor, conversationID int64, page helpers.Page) (*dto.PaginatedResponse, error) {
	conv, err := s.participantConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	messages, total, err := s.messageRepo.ListByConversation(ctx, conv.ID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	slices.Reverse(messages)

	if _, err := s.messageRepo.MarkRead(ctx, conv.ID, actor.Ref()); err != nil {
		s.logger.Warn().Err(err).Int64("conversationID", conv.ID).Msg("Failed to mark messages read")
	}

	resp := helpers.NewPaginatedResponse(messages, total, page)
	return &resp, nil
}

// MarkConversationRead marks the counterpart's unread messages read
func (s *messageServiceImpl) MarkConversationRead(ctx context.Context, actor models.Actor, conversationID int64) (*dto.MarkReadResponse, error) {
	conv, err := s.participantConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	n, err := s.messageRepo.MarkRead(ctx, conv.ID, actor.Ref())
	if err != nil {
		return nil, fmt.Errorf("error marking messages read: %w", err)
	}
	return &dto.MarkReadResponse{MarkedRead: n}, nil
}

// UnreadCount counts unread messages sent to the caller
func (s *messageServiceImpl) UnreadCount(ctx context.Context, actor models.Actor) (int64, error) {
	return s.messageRepo.UnreadCount(ctx, actor.Ref())
}

// DeleteMessage lets the sender withdraw a message within 24 hours
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, actor models.Actor, id int64) error {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, "Message not found")
	}
	if msg.Sender.Ref() != actor.Ref() {
		return apperrors.NewForbiddenError("You can only delete your own messages")
	}
	if !auth.WithinEditWindow(msg.CreatedAt, s.clock.now()) {
		return apperrors.NewValidationError("Messages can only be deleted within 24 hours of sending")
	}

	if err := s.messageRepo.Delete(ctx, msg); err != nil {
		return notFoundAs(err, "Message not found")
	}
	return nil
}
