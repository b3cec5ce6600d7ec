package models

import (
	"time"
)

// UserRole distinguishes regular members from staff accounts
type UserRole string

const (
	RoleMember UserRole = "member"
	RoleAdmin  UserRole = "admin"
)

// BanStatus is the trust state of a user
type BanStatus string

const (
	BanActive    BanStatus = "active"
	BanTemporary BanStatus = "temp_banned"
	BanSuspended BanStatus = "suspended"
)

// Valid reports whether s is a known ban status
func (s BanStatus) Valid() bool {
	switch s {
	case BanActive, BanTemporary, BanSuspended:
		return true
	}
	return false
}

// User defines the user model based on the 'users' table
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Email        string     `json:"email" db:"email" example:"jane@alumni.example.edu"`
	Name         string     `json:"name" db:"name" example:"Jane Doe"`
	AvatarURL    *string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	Role         UserRole   `json:"role" db:"role" example:"member"`
	BanStatus    BanStatus  `json:"banStatus" db:"ban_status" example:"active"`
	BanReason    *string    `json:"banReason,omitempty" db:"ban_reason"`
	BanExpiresAt *time.Time `json:"banExpiresAt,omitempty" db:"ban_expires_at"` // nil with suspended means permanent
	ReportCount  int        `json:"reportCount" db:"report_count" example:"0"`  // never decremented
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// Ref implements Actor
func (u *User) Ref() ActorRef { return UserRef(u.ID) }

// DisplayName implements Actor
func (u *User) DisplayName() string { return u.Name }

// Avatar implements Actor
func (u *User) Avatar() string {
	if u.AvatarURL == nil {
		return ""
	}
	return *u.AvatarURL
}

// IsPrivileged implements Actor. Staff role on a user account does not grant admin rights.
func (u *User) IsPrivileged() bool { return false }

// IsRestricted reports whether the user is currently blocked from creating content.
// A temporary ban whose expiry has passed no longer restricts, even if the stored
// status has not been reset yet.
func (u *User) IsRestricted(now time.Time) bool {
	switch u.BanStatus {
	case BanSuspended:
		return true
	case BanTemporary:
		return u.BanExpiresAt == nil || now.Before(*u.BanExpiresAt)
	default:
		return false
	}
}

// RestrictionMessage describes the active restriction for error responses
func (u *User) RestrictionMessage() string {
	reason := "no reason given"
	if u.BanReason != nil && *u.BanReason != "" {
		reason = *u.BanReason
	}

	if u.BanStatus == BanTemporary && u.BanExpiresAt != nil {
		return "Your account is temporarily banned until " + u.BanExpiresAt.UTC().Format(time.RFC3339) + ": " + reason
	}
	return "Your account is suspended: " + reason
}
