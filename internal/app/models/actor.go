package models

import (
	"fmt"
	"strings"
)

// ActorKind tags which principal table an actor id belongs to
type ActorKind string

const (
	ActorUser  ActorKind = "user"
	ActorAdmin ActorKind = "admin"
)

// Valid reports whether k is a known principal kind
func (k ActorKind) Valid() bool {
	return k == ActorUser || k == ActorAdmin
}

// ParseActorKind parses a kind, defaulting to user when empty
func ParseActorKind(s string) (ActorKind, error) {
	switch ActorKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", ActorUser:
		return ActorUser, nil
	case ActorAdmin:
		return ActorAdmin, nil
	default:
		return "", fmt.Errorf("unknown actor kind %q", s)
	}
}

// ActorRef identifies a principal. User and admin ids come from separate sequences,
// so the kind is part of the identity.
type ActorRef struct {
	Kind ActorKind `json:"kind" db:"kind" example:"user"`
	ID   int64     `json:"id" db:"id" example:"42"`
}

// UserRef builds a reference to a user
func UserRef(id int64) ActorRef { return ActorRef{Kind: ActorUser, ID: id} }

// AdminRef builds a reference to an admin
func AdminRef(id int64) ActorRef { return ActorRef{Kind: ActorAdmin, ID: id} }

func (r ActorRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// IsZero reports whether the reference is unset
func (r ActorRef) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

// Less orders references by kind, then id
func (r ActorRef) Less(other ActorRef) bool {
	if r.Kind != other.Kind {
		return r.Kind < other.Kind
	}
	return r.ID < other.ID
}

// OrderedPair returns a and b with the lesser reference first
func OrderedPair(a, b ActorRef) (ActorRef, ActorRef) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}

// PairKey is the canonical key of an unordered pair of actors
func PairKey(a, b ActorRef) string {
	first, second := OrderedPair(a, b)
	return first.String() + "|" + second.String()
}

// Actor is the resolved caller: either a *User or an *Admin
type Actor interface {
	Ref() ActorRef
	DisplayName() string
	Avatar() string
	IsPrivileged() bool
}

// ActorSummary is the public view of an actor embedded in other entities
type ActorSummary struct {
	Kind      ActorKind `json:"kind" example:"user"`
	ID        int64     `json:"id" example:"42"`
	Name      string    `json:"name" example:"Jane Doe"`
	AvatarURL string    `json:"avatarUrl,omitempty" example:"https://cdn.example.com/a/42.png"`
}

// Ref returns the reference part of the summary
func (s ActorSummary) Ref() ActorRef {
	return ActorRef{Kind: s.Kind, ID: s.ID}
}

// SummaryOf builds the public summary of a resolved actor
func SummaryOf(a Actor) ActorSummary {
	ref := a.Ref()
	return ActorSummary{Kind: ref.Kind, ID: ref.ID, Name: a.DisplayName(), AvatarURL: a.Avatar()}
}
