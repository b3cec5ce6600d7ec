package auth

import (
	"time"

	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
)

// EditWindow is how long an author may delete their own comment or message
const EditWindow = 24 * time.Hour

// RequireActiveUser rejects users whose ban currently restricts them. Admins pass.
func RequireActiveUser(actor models.Actor, now time.Time) error {
	user, ok := actor.(*models.User)
	if !ok {
		return nil
	}
	if user.IsRestricted(now) {
		return apperrors.NewForbiddenError(user.RestrictionMessage())
	}
	return nil
}

// RequireUser returns the actor as a user or fails with permission denied
func RequireUser(actor models.Actor) (*models.User, error) {
	user, ok := actor.(*models.User)
	if !ok {
		return nil, apperrors.NewForbiddenError("Only members can perform this action")
	}
	return user, nil
}

// CanModifyPost reports whether actor may edit a post. Only the author may.
func CanModifyPost(actor models.Actor, post *models.Post) bool {
	return actor.Ref() == models.UserRef(post.AuthorID)
}

// CanDeletePost reports whether actor may delete a post: its author at any time, or an admin
func CanDeletePost(actor models.Actor, post *models.Post) bool {
	return actor.IsPrivileged() || CanModifyPost(actor, post)
}

// CanModifyComment reports whether actor may edit a comment
func CanModifyComment(actor models.Actor, comment *models.Comment) bool {
	return actor.Ref() == comment.Author.Ref()
}

// CanDeleteComment reports whether actor may delete a comment: its author within the
// edit window, or an admin at any time
func CanDeleteComment(actor models.Actor, comment *models.Comment, now time.Time) bool {
	if actor.IsPrivileged() {
		return true
	}
	return CanModifyComment(actor, comment) && now.Sub(comment.CreatedAt) <= EditWindow
}

// WithinEditWindow reports whether something created at createdAt may still be withdrawn
func WithinEditWindow(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= EditWindow
}
