package models

import "time"

// MaxReplyDepth is the deepest level clients may expand; storage depth is unbounded
const MaxReplyDepth = 5

// CommentSort selects the ordering of top-level comments
type CommentSort string

const (
	CommentSortTop CommentSort = "top"
	CommentSortNew CommentSort = "new"
)

// Comment defines the comment model based on the 'comments' table
type Comment struct {
	ID              int64        `json:"id" db:"id" example:"10"`
	PostID          int64        `json:"postId" db:"post_id" example:"1"`
	Author          ActorSummary `json:"author"`
	ParentCommentID *int64       `json:"parentCommentId,omitempty" db:"parent_comment_id"`
	Depth           int          `json:"depth" db:"depth" example:"0"`
	Content         string       `json:"content" db:"content" example:"Count me in!"`
	Upvotes         int          `json:"upvotes" db:"upvotes"`
	Downvotes       int          `json:"downvotes" db:"downvotes"`
	RepliesCount    int          `json:"repliesCount"`
	IsActive        bool         `json:"-" db:"is_active"`
	IsEdited        bool         `json:"isEdited" db:"is_edited"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time    `json:"updatedAt" db:"updated_at"`
	ViewerState
}

// IsTopLevel reports whether the comment replies directly to the post
func (c *Comment) IsTopLevel() bool {
	return c.ParentCommentID == nil
}

// CommentQuery describes a page of top-level comments or replies
type CommentQuery struct {
	Sort      CommentSort
	Ascending bool
	Offset    uint64
	Limit     int
}
