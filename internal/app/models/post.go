package models

import "time"

// VoteDirection is the vote a caller casts
type VoteDirection int16

const (
	VoteDown VoteDirection = -1
	VoteUp   VoteDirection = 1
)

func (d VoteDirection) String() string {
	if d == VoteUp {
		return "up"
	}
	return "down"
}

// VoteOutcome is the state of a vote ledger entry after a toggle
type VoteOutcome struct {
	Upvotes      int  `json:"upvotes" example:"12"`
	Downvotes    int  `json:"downvotes" example:"1"`
	HasUpvoted   bool `json:"hasUpvoted" example:"true"`
	HasDownvoted bool `json:"hasDownvoted" example:"false"`
	// Added is true when the requested vote was recorded rather than toggled off
	Added bool `json:"-"`
}

// ViewerState holds the per-caller flags attached to posts and comments on read
type ViewerState struct {
	HasUpvoted   bool `json:"hasUpvoted"`
	HasDownvoted bool `json:"hasDownvoted"`
}

// Post defines the post model based on the 'posts' table
type Post struct {
	ID            int64        `json:"id" db:"id" example:"1"`
	AuthorID      int64        `json:"-" db:"author_id"`
	Author        ActorSummary `json:"author"`
	Content       string       `json:"content" db:"content" example:"Reunion planning thread"`
	Category      string       `json:"category" db:"category" example:"general"`
	Upvotes       int          `json:"upvotes" db:"upvotes" example:"3"`
	Downvotes     int          `json:"downvotes" db:"downvotes" example:"0"`
	CommentsCount int          `json:"commentsCount" db:"comments_count" example:"5"`
	IsActive      bool         `json:"-" db:"is_active"`
	IsPinned      bool         `json:"isPinned" db:"is_pinned"`
	IsEdited      bool         `json:"isEdited" db:"is_edited"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
	ViewerState
	IsSaved bool `json:"isSaved"`
}

// PostFilter narrows the feed
type PostFilter struct {
	Category string
	AuthorID *int64
	Offset   uint64
	Limit    int
}
