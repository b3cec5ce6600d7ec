package models

import "time"

// ConnectionStatus is the handshake state of a connection
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
	// ConnectionNone is reported by status queries when no record exists
	ConnectionNone ConnectionStatus = "none"
)

// Valid reports whether s is a stored connection status
func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionPending, ConnectionAccepted, ConnectionRejected:
		return true
	}
	return false
}

// Connection defines the connection model based on the 'connections' table
type Connection struct {
	ID          int64            `json:"id" db:"id" example:"3"`
	RequesterID int64            `json:"requesterId" db:"requester_id" example:"1"`
	RecipientID int64            `json:"recipientId" db:"recipient_id" example:"2"`
	Status      ConnectionStatus `json:"status" db:"status" example:"pending"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`

	// Other is the counterpart of the viewing user, filled by list queries
	Other *ActorSummary `json:"user,omitempty"`
}

// Involves reports whether userID is either side of the connection
func (c *Connection) Involves(userID int64) bool {
	return c.RequesterID == userID || c.RecipientID == userID
}

// ConnectionState is the symmetric status of a pair as seen by one side
type ConnectionState struct {
	Status       ConnectionStatus `json:"status" example:"pending"`
	ConnectionID *int64           `json:"connectionId,omitempty" example:"3"`
	IsRequester  bool             `json:"isRequester" example:"true"`
}
