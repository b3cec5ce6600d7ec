package models

import "time"

// NotificationType enumerates what triggered a notification
type NotificationType string

const (
	NotificationReply      NotificationType = "reply"
	NotificationComment    NotificationType = "comment"
	NotificationUpvote     NotificationType = "upvote"
	NotificationMention    NotificationType = "mention"
	NotificationPost       NotificationType = "post"
	NotificationConnection NotificationType = "connection"
	NotificationMessage    NotificationType = "message"
)

// Notification defines the notification model based on the 'notifications' table
type Notification struct {
	ID        int64            `json:"id" db:"id" example:"17"`
	Recipient ActorRef         `json:"-"`
	Sender    ActorSummary     `json:"sender"`
	Type      NotificationType `json:"type" db:"type" example:"upvote"`
	Title     string           `json:"title" db:"title" example:"New upvote"`
	Message   string           `json:"message" db:"message" example:"Jane Doe upvoted your post"`
	PostID    *int64           `json:"postId,omitempty" db:"post_id"`
	CommentID *int64           `json:"commentId,omitempty" db:"comment_id"`
	IsRead    bool             `json:"read" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}
