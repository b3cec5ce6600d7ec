package models

import "time"

// ReportReason enumerates why a post was reported
type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonHarassment     ReportReason = "harassment"
	ReasonHateSpeech     ReportReason = "hate_speech"
	ReasonInappropriate  ReportReason = "inappropriate"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonOther          ReportReason = "other"
)

// ReportStatus is the review state of a report
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Valid reports whether s is a known report status
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Report defines the report model based on the 'reports' table
type Report struct {
	ID          int64        `json:"id" db:"id" example:"7"`
	PostID      int64        `json:"postId" db:"post_id" example:"1"`
	ReporterID  int64        `json:"reporterId" db:"reporter_id" example:"2"`
	Reason      ReportReason `json:"reason" db:"reason" example:"spam"`
	Description *string      `json:"description,omitempty" db:"description"`
	Status      ReportStatus `json:"status" db:"status" example:"pending"`
	ReviewedBy  *int64       `json:"reviewedBy,omitempty" db:"reviewed_by"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`

	// Populated by admin list queries
	Reporter    *ActorSummary `json:"reporter,omitempty"`
	PostAuthor  *ActorSummary `json:"postAuthor,omitempty"`
	PostExcerpt string        `json:"postExcerpt,omitempty"`
}

// AutoBanPolicy configures the report-count escalation
type AutoBanPolicy struct {
	Threshold int
	Duration  time.Duration
	Reason    string
}

// ReportOutcome is the effect of filing a report on the post author
type ReportOutcome struct {
	Report      *Report
	ReportCount int
	AutoBanned  bool
}

// ReportedUser aggregates reports by the author of the reported posts
type ReportedUser struct {
	User             ActorSummary   `json:"user"`
	Email            string         `json:"email"`
	BanStatus        BanStatus      `json:"banStatus"`
	ReportCount      int            `json:"reportCount"`      // reports in this aggregation
	TotalReportCount int            `json:"totalReportCount"` // lifetime counter on the user
	RecentReasons    []ReportReason `json:"recentReasons"`
	LastReportedAt   time.Time      `json:"lastReportedAt"`
}

// BanRecord is the ban state of a user after a moderation action
type BanRecord struct {
	UserID          int64      `json:"userId"`
	BanStatus       BanStatus  `json:"banStatus"`
	BanReason       *string    `json:"banReason,omitempty"`
	BanExpiresAt    *time.Time `json:"banExpiresAt,omitempty"`
	ReportCount     int        `json:"reportCount"`
	ResolvedReports int64      `json:"resolvedReports"`
}
