package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/dispatch"
	"github.com/yigit/alumnet/internal/pkg/helpers"
	"github.com/yigit/alumnet/internal/pkg/mention"
	"github.com/yigit/alumnet/internal/pkg/metrics"
)

// Dispatch topics handled by NotificationService.Handle
const (
	TopicNotification = "notification.create"
	TopicMentions     = "notification.mentions"
)

// NotifyInput describes one notification to deliver
type NotifyInput struct {
	Recipient models.ActorRef         `json:"recipient"`
	Sender    models.ActorSummary     `json:"sender"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	PostID    *int64                  `json:"postId,omitempty"`
	CommentID *int64                  `json:"commentId,omitempty"`
}

// MentionInput describes a text whose @mentions should be notified
type MentionInput struct {
	Sender    models.ActorSummary `json:"sender"`
	Text      string              `json:"text"`
	PostID    *int64              `json:"postId,omitempty"`
	CommentID *int64              `json:"commentId,omitempty"`
}

// NotificationService defines the interface for notification fan-out and the inbox
type NotificationService interface {
	// Notify queues a notification. It never fails the caller.
	Notify(ctx context.Context, in NotifyInput)
	// NotifyMentions queues the mention fan-out for text
	NotifyMentions(ctx context.Context, in MentionInput)
	// Handle processes a queued job; it is the dispatch.Handler of the notification queue
	Handle(ctx context.Context, job dispatch.Job) error

	List(ctx context.Context, recipient models.ActorRef, unreadOnly bool, page helpers.Page) (*dto.PaginatedResponse, error)
	UnreadCount(ctx context.Context, recipient models.ActorRef) (int64, error)
	MarkRead(ctx context.Context, id int64, recipient models.ActorRef) error
	MarkAllRead(ctx context.Context, recipient models.ActorRef) (int64, error)
	Delete(ctx context.Context, id int64, recipient models.ActorRef) error
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	notificationRepo NotificationStore
	userRepo         UserStore
	queue            dispatch.Queue
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo NotificationStore,
	userRepo UserStore,
	queue dispatch.Queue,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		queue:            queue,
		logger:           logger,
	}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, in NotifyInput) {
	if in.Recipient == in.Sender.Ref() {
		return
	}
	s.enqueue(ctx, TopicNotification, in)
}

func (s *notificationServiceImpl) NotifyMentions(ctx context.Context, in MentionInput) {
	if len(mention.Extract(in.Text)) == 0 {
		return
	}
	s.enqueue(ctx, TopicMentions, in)
}

func (s *notificationServiceImpl) enqueue(ctx context.Context, topic string, payload any) {
	job, err := dispatch.NewJob(topic, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("Failed to encode notification job")
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return
	}

	// the job outlives the request
	if err := s.queue.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("Notification dropped")
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return
	}
	metrics.NotificationsTotal.WithLabelValues("enqueued").Inc()
}

func (s *notificationServiceImpl) Handle(ctx context.Context, job dispatch.Job) error {
	var err error
	switch job.Topic {
	case TopicNotification:
		var in NotifyInput
		if err = json.Unmarshal(job.Payload, &in); err == nil {
			err = s.store(ctx, in)
		}
	case TopicMentions:
		var in MentionInput
		if err = json.Unmarshal(job.Payload, &in); err == nil {
			err = s.fanOutMentions(ctx, in)
		}
	default:
		err = fmt.Errorf("unknown notification topic %q", job.Topic)
	}

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return err
	}
	return nil
}

func (s *notificationServiceImpl) store(ctx context.Context, in NotifyInput) error {
	if in.Recipient == in.Sender.Ref() {
		return nil
	}

	n := &models.Notification{
		Recipient: in.Recipient,
		Sender:    in.Sender,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		PostID:    in.PostID,
		CommentID: in.CommentID,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("store %s notification for %s: %w", in.Type, in.Recipient, err)
	}
	metrics.NotificationsTotal.WithLabelValues("stored").Inc()
	return nil
}

// fanOutMentions resolves each distinct token to the first user whose name starts
// with it and notifies every resolved user once, never the sender
func (s *notificationServiceImpl) fanOutMentions(ctx context.Context, in MentionInput) error {
	notified := make(map[int64]struct{})
	var errs []error

	for _, token := range mention.Extract(in.Text) {
		user, err := s.userRepo.FindByNamePrefix(ctx, token)
		if err != nil {
			if !errors.Is(err, apperrors.ErrResourceNotFound) {
				errs = append(errs, fmt.Errorf("resolve mention %q: %w", token, err))
			}
			continue
		}
		if _, done := notified[user.ID]; done || user.Ref() == in.Sender.Ref() {
			continue
		}
		notified[user.ID] = struct{}{}

		err = s.store(ctx, NotifyInput{
			Recipient: user.Ref(),
			Sender:    in.Sender,
			Type:      models.NotificationMention,
			Title:     "You were mentioned",
			Message:   fmt.Sprintf("%s mentioned you: %s", in.Sender.Name, excerpt(in.Text, 100)),
			PostID:    in.PostID,
			CommentID: in.CommentID,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns a page of the recipient's notifications
func (s *notificationServiceImpl) List(ctx context.Context, recipient models.ActorRef, unreadOnly bool, page helpers.Page) (*dto.PaginatedResponse, error) {
	items, total, err := s.notificationRepo.List(ctx, recipient, unreadOnly, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, page)
	return &resp, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, recipient models.ActorRef) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, recipient)
}

// MarkRead marks one notification read; another recipient's notification is not found
func (s *notificationServiceImpl) MarkRead(ctx context.Context, id int64, recipient models.ActorRef) error {
	if err := s.notificationRepo.MarkRead(ctx, id, recipient); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewResourceNotFoundError("Notification not found")
		}
		return err
	}
	return nil
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, recipient models.ActorRef) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, recipient)
}

// Delete removes one of the recipient's notifications
func (s *notificationServiceImpl) Delete(ctx context.Context, id int64, recipient models.ActorRef) error {
	if err := s.notificationRepo.Delete(ctx, id, recipient); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewResourceNotFoundError("Notification not found")
		}
		return err
	}
	return nil
}
