package models

import "time"

// Admin is a platform operator. Admins share messaging, comments and notifications
// with users but are stored separately and are never subject to bans.
type Admin struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	Email        string    `json:"email" db:"email" example:"ops@alumni.example.edu"`
	Name         string    `json:"name" db:"name" example:"Platform Admin"`
	AvatarURL    *string   `json:"avatarUrl,omitempty" db:"avatar_url"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Ref implements Actor
func (a *Admin) Ref() ActorRef { return AdminRef(a.ID) }

// DisplayName implements Actor
func (a *Admin) DisplayName() string { return a.Name }

// Avatar implements Actor
func (a *Admin) Avatar() string {
	if a.AvatarURL == nil {
		return ""
	}
	return *a.AvatarURL
}

// IsPrivileged implements Actor
func (a *Admin) IsPrivileged() bool { return true }
