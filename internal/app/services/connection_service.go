package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/alumnet/internal/app/auth"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/app/repositories"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/helpers"
)

// ConnectionService defines the interface for the connection handshake
type ConnectionService interface {
	RequestConnection(ctx context.Context, actor models.Actor, req *dto.ConnectionRequest) (*models.Connection, error)
	AcceptConnection(ctx context.Context, actor models.Actor, id int64) (*models.Connection, error)
	RejectConnection(ctx context.Context, actor models.Actor, id int64) (*models.Connection, error)
	DeleteConnection(ctx context.Context, actor models.Actor, id int64) error
	GetStatus(ctx context.Context, actor models.Actor, otherUserID int64) (*models.ConnectionState, error)
	ListConnections(ctx context.Context, actor models.Actor, query *dto.ConnectionListQuery, page helpers.Page) (*dto.PaginatedResponse, error)
	ListIncomingRequests(ctx context.Context, actor models.Actor, page helpers.Page) (*dto.PaginatedResponse, error)
}

// connectionServiceImpl implements ConnectionService
type connectionServiceImpl struct {
	connectionRepo ConnectionStore
	userRepo       UserStore
	notifications  NotificationService
	logger         zerolog.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(
	connectionRepo ConnectionStore,
	userRepo UserStore,
	notifications NotificationService,
	logger zerolog.Logger,
) ConnectionService {
	return &connectionServiceImpl{
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
		notifications:  notifications,
		logger:         logger,
	}
}

var errConnectionExists = apperrors.NewValidationError("A connection with this user already exists")

// RequestConnection opens a pending connection to another user. Any existing record
// for the pair, in either direction and any status, blocks a new request.
func (s *connectionServiceImpl) RequestConnection(ctx context.Context, actor models.Actor, req *dto.ConnectionRequest) (*models.Connection, error) {
	user, err := auth.RequireUser(actor)
	if err != nil {
		return nil, err
	}
	if req.RecipientID == user.ID {
		return nil, apperrors.NewValidationError("You cannot connect with yourself")
	}

	if _, err := s.userRepo.GetUserByID(ctx, req.RecipientID); err != nil {
		return nil, notFoundAs(err, "User not found")
	}

	existing, err := s.connectionRepo.FindBetween(ctx, user.ID, req.RecipientID)
	switch {
	case err == nil && existing != nil:
		return nil, errConnectionExists
	case err != nil && !apperrors.Is(err, apperrors.ErrResourceNotFound):
		return nil, fmt.Errorf("error checking existing connection: %w", err)
	}

	conn := &models.Connection{RequesterID: user.ID, RecipientID: req.RecipientID}
	if err := s.connectionRepo.Create(ctx, conn); err != nil {
		if apperrors.Is(err, apperrors.ErrResourceAlreadyExists) {
			return nil, errConnectionExists
		}
		return nil, fmt.Errorf("error creating connection: %w", err)
	}

	sender := models.SummaryOf(user)
	s.notifications.Notify(ctx, NotifyInput{
		Recipient: models.UserRef(conn.RecipientID),
		Sender:    sender,
		Type:      models.NotificationConnection,
		Title:     "New connection request",
		Message:   sender.Name + " wants to connect with you",
	})
	return conn, nil
}

// AcceptConnection accepts a pending request addressed to the caller
func (s *connectionServiceImpl) AcceptConnection(ctx context.Context, actor models.Actor, id int64) (*models.Connection, error) {
	conn, err := s.respond(ctx, actor, id, models.ConnectionAccepted)
	if err != nil {
		return nil, err
	}

	sender := models.SummaryOf(actor)
	s.notifications.Notify(ctx, NotifyInput{
		Recipient: models.UserRef(conn.RequesterID),
		Sender:    sender,
		Type:      models.NotificationConnection,
		Title:     "Connection accepted",
		Message:   sender.Name + " accepted your connection request",
	})
	return conn, nil
}

// RejectConnection rejects a pending request addressed to the caller. The rejected
// record stays and blocks new requests until either side deletes it.
func (s *connectionServiceImpl) RejectConnection(ctx context.Context, actor models.Actor, id int64) (*models.Connection, error) {
	return s.respond(ctx, actor, id, models.ConnectionRejected)
}

func (s *connectionServiceImpl) respond(ctx context.Context, actor models.Actor, id int64, status models.ConnectionStatus) (*models.Connection, error) {
	user, err := auth.RequireUser(actor)
	if err != nil {
		return nil, err
	}

	conn, err := s.connectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Connection not found")
	}
	if conn.RecipientID != user.ID {
		return nil, apperrors.NewForbiddenError("Only the recipient can respond to a connection request")
	}
	if conn.Status != models.ConnectionPending {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Connection request is already %s", conn.Status))
	}

	updated, err := s.connectionRepo.Respond(ctx, id, status)
	if err != nil {
		// lost a race with another response or a delete
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewValidationError("Connection request is no longer pending")
		}
		return nil, fmt.Errorf("error responding to connection: %w", err)
	}

	s.logger.Info().Int64("connectionID", id).Str("status", string(status)).Msg("Connection request answered")
	return updated, nil
}

// DeleteConnection removes a record in any status. Either party may do so.
func (s *connectionServiceImpl) DeleteConnection(ctx context.Context, actor models.Actor, id int64) error {
	user, err := auth.RequireUser(actor)
	if err != nil {
		return err
	}

	conn, err := s.connectionRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, "Connection not found")
	}
	if !conn.Involves(user.ID) {
		return apperrors.NewForbiddenError("You are not part of this connection")
	}

	if err := s.connectionRepo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "Connection not found")
	}
	return nil
}

// GetStatus reports the state of the pair from the caller's side
func (s *connectionServiceImpl) GetStatus(ctx context.Context, actor models.Actor, otherUserID int64) (*models.ConnectionState, error) {
	user, err := auth.RequireUser(actor)
	if err != nil {
		return nil, err
	}
	if otherUserID == user.ID {
		return &models.ConnectionState{Status: models.ConnectionNone}, nil
	}

	conn, err := s.connectionRepo.FindBetween(ctx, user.ID, otherUserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return &models.ConnectionState{Status: models.ConnectionNone}, nil
		}
		return nil, fmt.Errorf("error reading connection status: %w", err)
	}

	return &models.ConnectionState{
		Status:       conn.Status,
		ConnectionID: &conn.ID,
		IsRequester:  conn.RequesterID == user.ID,
	}, nil
}

// ListConnections lists the caller's connections in one status, accepted by default
func (s *connectionServiceImpl) ListConnections(ctx context.Context, actor models.Actor, query *dto.ConnectionListQuery, page helpers.Page) (*dto.PaginatedResponse, error) {
	status := models.ConnectionStatus(query.Status)
	if status == "" {
		status = models.ConnectionAccepted
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Unknown connection status")
	}
	return s.list(ctx, actor, status, false, page)
}

// ListIncomingRequests lists pending requests addressed to the caller
func (s *connectionServiceImpl) ListIncomingRequests(ctx context.Context, actor models.Actor, page helpers.Page) (*dto.PaginatedResponse, error) {
	return s.list(ctx, actor, models.ConnectionPending, true, page)
}

func (s *connectionServiceImpl) list(ctx context.Context, actor models.Actor, status models.ConnectionStatus, incoming bool, page helpers.Page) (*dto.PaginatedResponse, error) {
	user, err := auth.RequireUser(actor)
	if err != nil {
		return nil, err
	}

	conns, total, err := s.connectionRepo.List(ctx, repositories.ConnectionFilter{
		UserID:       user.ID,
		Status:       status,
		IncomingOnly: incoming,
		Offset:       page.Offset(),
		Limit:        page.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	resp := helpers.NewPaginatedResponse(conns, total, page)
	return &resp, nil
}
