package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/db"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/dberrors"
)

const reportPostReporterConstraint = "uq_reports_post_reporter"

// ReportRepository handles database operations for post reports
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateWithEscalation files the report, bumps the post author's report counter and
// applies the automatic temporary ban once the counter reaches the policy threshold.
// The ban only lands on an active, non-staff account, so it fires once per crossing.
func (r *ReportRepository) CreateWithEscalation(ctx context.Context, report *models.Report, authorID int64, policy models.AutoBanPolicy, now time.Time) (*models.ReportOutcome, error) {
	outcome := &models.ReportOutcome{Report: report}

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		insert := `
			INSERT INTO reports (post_id, reporter_id, reason, description)
			VALUES ($1, $2, $3, $4)
			RETURNING id, status, created_at, updated_at`

		var status string
		err := tx.QueryRow(ctx, insert, report.PostID, report.ReporterID, string(report.Reason), report.Description).
			Scan(&report.ID, &status, &report.CreatedAt, &report.UpdatedAt)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, reportPostReporterConstraint) {
				return apperrors.ErrResourceAlreadyExists
			}
			return fmt.Errorf("error creating report: %w", err)
		}
		report.Status = models.ReportStatus(status)

		bump := `UPDATE users SET report_count = report_count + 1, updated_at = NOW() WHERE id = $1 RETURNING report_count`
		if err := tx.QueryRow(ctx, bump, authorID).Scan(&outcome.ReportCount); err != nil {
			return notFound(err, "increment report count")
		}

		ban := `
			UPDATE users
			SET ban_status = 'temp_banned', ban_reason = $2, ban_expires_at = $3, updated_at = NOW()
			WHERE id = $1 AND ban_status = 'active' AND role <> 'admin' AND report_count >= $4`
		tag, err := tx.Exec(ctx, ban, authorID, policy.Reason, now.Add(policy.Duration), policy.Threshold)
		if err != nil {
			return fmt.Errorf("apply automatic ban: %w", err)
		}
		outcome.AutoBanned = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// GetByID retrieves a report by id
func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	query := `
		SELECT id, post_id, reporter_id, reason, description, status, reviewed_by, created_at, updated_at
		FROM reports WHERE id = $1`

	var rep models.Report
	var reason, status string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rep.ID, &rep.PostID, &rep.ReporterID, &reason, &rep.Description, &status,
		&rep.ReviewedBy, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "get report")
	}
	rep.Reason = models.ReportReason(reason)
	rep.Status = models.ReportStatus(status)
	return &rep, nil
}

// List returns reports newest first with reporter and post author summaries.
// An empty status lists every report.
func (r *ReportRepository) List(ctx context.Context, status models.ReportStatus, offset uint64, limit int) ([]*models.Report, int64, error) {
	where := squirrel.And{}
	if status != "" {
		where = append(where, squirrel.Eq{"r.status": string(status)})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("reports r").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting reports: %w", err)
	}

	query, args, err := psql.Select(
		"r.id", "r.post_id", "r.reporter_id", "r.reason", "r.description", "r.status", "r.reviewed_by",
		"r.created_at", "r.updated_at",
		"ru.name", "COALESCE(ru.avatar_url, '')",
		"p.author_id", "COALESCE(pu.name, '')", "COALESCE(pu.avatar_url, '')",
		"LEFT(p.content, 140)",
	).
		From("reports r").
		Join("users ru ON ru.id = r.reporter_id").
		Join("posts p ON p.id = r.post_id").
		LeftJoin("users pu ON pu.id = p.author_id").
		Where(where).
		OrderBy("r.created_at DESC", "r.id DESC").
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

	reports := make([]*models.Report, 0)
	for rows.Next() {
		var rep models.Report
		var reason, st string
		reporter := models.ActorSummary{Kind: models.ActorUser}
		author := models.ActorSummary{Kind: models.ActorUser}
		if err := rows.Scan(
			&rep.ID, &rep.PostID, &rep.ReporterID, &reason, &rep.Description, &st, &rep.ReviewedBy,
			&rep.CreatedAt, &rep.UpdatedAt,
			&reporter.Name, &reporter.AvatarURL,
			&author.ID, &author.Name, &author.AvatarURL,
			&rep.PostExcerpt,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning report: %w", err)
		}
		rep.Reason = models.ReportReason(reason)
		rep.Status = models.ReportStatus(st)
		reporter.ID = rep.ReporterID
		rep.Reporter = &reporter
		rep.PostAuthor = &author
		reports = append(reports, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, total, nil
}

// ReportedUsers aggregates non-dismissed reports by post author, most reported first.
// Each row carries up to sampleSize distinct reasons, most recent first.
func (r *ReportRepository) ReportedUsers(ctx context.Context, offset uint64, limit, sampleSize int) ([]*models.ReportedUser, int64, error) {
	countQuery := `
		SELECT COUNT(DISTINCT p.author_id)
		FROM reports r JOIN posts p ON p.id = r.post_id
		WHERE r.status <> 'dismissed'`

	var total int64
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting reported users: %w", err)
	}

	query := `
		WITH grouped AS (
			SELECT p.author_id, COUNT(*) AS reports, MAX(r.created_at) AS last_reported_at
			FROM reports r JOIN posts p ON p.id = r.post_id
			WHERE r.status <> 'dismissed'
			GROUP BY p.author_id
		)
		SELECT u.id, u.name, COALESCE(u.avatar_url, ''), u.email, u.ban_status, u.report_count,
		       g.reports, g.last_reported_at,
		       ARRAY(
		           SELECT rr.reason
		           FROM reports rr JOIN posts rp ON rp.id = rr.post_id
		           WHERE rp.author_id = g.author_id AND rr.status <> 'dismissed'
		           GROUP BY rr.reason
		           ORDER BY MAX(rr.created_at) DESC
		           LIMIT $3
		       )
		FROM grouped g
		JOIN users u ON u.id = g.author_id
		ORDER BY g.reports DESC, g.last_reported_at DESC, u.id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset, sampleSize)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	users := make([]*models.ReportedUser, 0)
	for rows.Next() {
		ru := models.ReportedUser{User: models.ActorSummary{Kind: models.ActorUser}}
		var status string
		var reasons []string
		if err := rows.Scan(
			&ru.User.ID, &ru.User.Name, &ru.User.AvatarURL, &ru.Email, &status, &ru.TotalReportCount,
			&ru.ReportCount, &ru.LastReportedAt, &reasons,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning reported user: %w", err)
		}
		ru.BanStatus = models.BanStatus(status)
		ru.RecentReasons = make([]models.ReportReason, 0, len(reasons))
		for _, reason := range reasons {
			ru.RecentReasons = append(ru.RecentReasons, models.ReportReason(reason))
		}
		users = append(users, &ru)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reported users: %w", err)
	}
	return users, total, nil
}

// Dismiss marks a pending or reviewed report dismissed. It reports false when the
// report exists but is already closed.
func (r *ReportRepository) Dismiss(ctx context.Context, id, adminID int64) (*models.Report, bool, error) {
	query := `
		UPDATE reports
		SET status = 'dismissed', reviewed_by = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'reviewed')`

	tag, err := r.db.Exec(ctx, query, id, adminID)
	if err != nil {
		return nil, false, fmt.Errorf("error dismissing report: %w", err)
	}

	report, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return report, tag.RowsAffected() == 1, nil
}
