package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/alumnet/internal/app/auth"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/models/dto"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/helpers"
	"github.com/yigit/alumnet/internal/pkg/metrics"
)

// ModerationConfig tunes the report escalation and the admin views
type ModerationConfig struct {
	AutoBan models.AutoBanPolicy
	// ReasonSampleSize bounds the distinct recent reasons listed per reported user
	ReasonSampleSize int
}

// DefaultModerationConfig bans for three days on the third report
func DefaultModerationConfig() ModerationConfig {
	return ModerationConfig{
		AutoBan: models.AutoBanPolicy{
			Threshold: 3,
			Duration:  72 * time.Hour,
			Reason:    "Automatically suspended after multiple reports",
		},
		ReasonSampleSize: 5,
	}
}

// ModerationService defines the interface for reports and bans
type ModerationService interface {
	ReportPost(ctx context.Context, actor models.Actor, postID int64, req *dto.ReportPostRequest) (*dto.ReportPostResponse, error)
	ListReports(ctx context.Context, actor models.Actor, query *dto.ReportListQuery, page helpers.Page) (*dto.PaginatedResponse, error)
	ListReportedUsers(ctx context.Context, actor models.Actor, page helpers.Page) (*dto.PaginatedResponse, error)
	BanUser(ctx context.Context, actor models.Actor, userID int64, req *dto.BanUserRequest) (*models.BanRecord, error)
	UnbanUser(ctx context.Context, actor models.Actor, userID int64) (*models.BanRecord, error)
	DismissReport(ctx context.Context, actor models.Actor, reportID int64) (*models.Report, error)
}

// moderationServiceImpl implements ModerationService
type moderationServiceImpl struct {
	reportRepo ReportStore
	postRepo   PostStore
	userRepo   UserStore
	config     ModerationConfig
	clock      Clock
	logger     zerolog.Logger
}

// NewModerationService creates a new ModerationService
func NewModerationService(
	reportRepo ReportStore,
	postRepo PostStore,
	userRepo UserStore,
	config ModerationConfig,
	clock Clock,
	logger zerolog.Logger,
) ModerationService {
	defaults := DefaultModerationConfig()
	if config.AutoBan.Threshold < 1 {
		config.AutoBan.Threshold = defaults.AutoBan.Threshold
	}
	if config.AutoBan.Duration <= 0 {
		config.AutoBan.Duration = defaults.AutoBan.Duration
	}
	if config.AutoBan.Reason == "" {
		config.AutoBan.Reason = defaults.AutoBan.Reason
	}
	if config.ReasonSampleSize < 1 {
		config.ReasonSampleSize = defaults.ReasonSampleSize
	}

	return &moderationServiceImpl{
		reportRepo: reportRepo,
		postRepo:   postRepo,
		userRepo:   userRepo,
		config:     config,
		clock:      clock,
		logger:     logger,
	}
}

// ReportPost files a report against someone else's post. The report, the author's
// counter and a possible automatic ban commit together.
func (s *moderationServiceImpl) ReportPost(ctx context.Context, actor models.Actor, postID int64, req *dto.ReportPostRequest) (*dto.ReportPostResponse, error) {
	user, err := auth.RequireUser(actor)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID, user.Ref())
	if err != nil {
		return nil, postNotFound(err)
	}
	if post.AuthorID == user.ID {
		return nil, apperrors.NewValidationError("You cannot report your own post")
	}

	report := &models.Report{
		PostID:     post.ID,
		ReporterID: user.ID,
		Reason:     models.ReportReason(req.Reason),
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		report.Description = &desc
	}

	outcome, err := s.reportRepo.CreateWithEscalation(ctx, report, post.AuthorID, s.config.AutoBan, s.clock.now())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceAlreadyExists) {
			return nil, apperrors.NewValidationError("You have already reported this post")
		}
		return nil, fmt.Errorf("error filing report: %w", err)
	}
	metrics.ReportsTotal.Inc()

	if outcome.AutoBanned {
		metrics.AutoBansTotal.Inc()
		s.logger.Warn().
			Int64("userID", post.AuthorID).
			Int("reportCount", outcome.ReportCount).
			Dur("duration", s.config.AutoBan.Duration).
			Msg("User automatically banned after reaching the report threshold")
	}

	return &dto.ReportPostResponse{Reported: true}, nil
}

// ListReports returns reports newest first, optionally filtered by status
func (s *moderationServiceImpl) ListReports(ctx context.Context, actor models.Actor, query *dto.ReportListQuery, page helpers.Page) (*dto.PaginatedResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	reports, total, err := s.reportRepo.List(ctx, models.ReportStatus(query.Status), page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	resp := helpers.NewPaginatedResponse(reports, total, page)
	return &resp, nil
}

// ListReportedUsers aggregates open reports by post author, most reported first
func (s *moderationServiceImpl) ListReportedUsers(ctx context.Context, actor models.Actor, page helpers.Page) (*dto.PaginatedResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	users, total, err := s.reportRepo.ReportedUsers(ctx, page.Offset(), page.Limit, s.config.ReasonSampleSize)
	if err != nil {
		return nil, fmt.Errorf("error listing reported users: %w", err)
	}
	resp := helpers.NewPaginatedResponse(users, total, page)
	return &resp, nil
}

// BanUser applies a temporary ban or a suspension and resolves the user's pending
// reports. The new status replaces whatever ban was in place.
func (s *moderationServiceImpl) BanUser(ctx context.Context, actor models.Actor, userID int64, req *dto.BanUserRequest) (*models.BanRecord, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	if target.Role == models.RoleAdmin {
		return nil, apperrors.NewForbiddenError("Staff accounts cannot be banned")
	}

	status := models.BanStatus(req.Type)
	if !status.Valid() || status == models.BanActive {
		return nil, apperrors.NewValidationError("Ban type must be temp_banned or suspended")
	}

	var expiresAt *time.Time
	if status == models.BanTemporary {
		if req.Duration < 1 {
			return nil, apperrors.NewValidationError("A temporary ban needs a duration of at least 1 day")
		}
		until := s.clock.now().Add(time.Duration(req.Duration) * 24 * time.Hour)
		expiresAt = &until
	}

	var reason *string
	if trimmed := strings.TrimSpace(req.Reason); trimmed != "" {
		reason = &trimmed
	}
	record, err := s.userRepo.ApplyBan(ctx, userID, status, reason, expiresAt, actor.Ref().ID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}

	s.logger.Info().
		Int64("userID", userID).
		Str("status", string(status)).
		Int64("adminID", actor.Ref().ID).
		Int64("resolvedReports", record.ResolvedReports).
		Msg("User banned")
	return record, nil
}

// UnbanUser returns a user to active. The report counter is kept; an active user is
// returned unchanged.
func (s *moderationServiceImpl) UnbanUser(ctx context.Context, actor models.Actor, userID int64) (*models.BanRecord, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	if target.BanStatus == models.BanActive {
		return &models.BanRecord{
			UserID:      target.ID,
			BanStatus:   target.BanStatus,
			ReportCount: target.ReportCount,
		}, nil
	}

	record, err := s.userRepo.ClearBan(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	s.logger.Info().Int64("userID", userID).Int64("adminID", actor.Ref().ID).Msg("User unbanned")
	return record, nil
}

// DismissReport closes a pending or reviewed report without action
func (s *moderationServiceImpl) DismissReport(ctx context.Context, actor models.Actor, reportID int64) (*models.Report, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	report, dismissed, err := s.reportRepo.Dismiss(ctx, reportID, actor.Ref().ID)
	if err != nil {
		return nil, notFoundAs(err, "Report not found")
	}
	if !dismissed {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Report is already %s and cannot be dismissed", report.Status))
	}
	return report, nil
}

func requireAdmin(actor models.Actor) error {
	if !actor.IsPrivileged() {
		return apperrors.NewForbiddenError("Admin access required")
	}
	return nil
}
