package models

import "time"

// Conversation defines the direct conversation between exactly two actors.
// ParticipantA is always the lesser reference of the pair.
type Conversation struct {
	ID              int64      `json:"id" db:"id" example:"5"`
	ParticipantA    ActorRef   `json:"-"`
	ParticipantB    ActorRef   `json:"-"`
	LastMessageID   *int64     `json:"-" db:"last_message_id"`
	LastMessageTime *time.Time `json:"lastMessageTime,omitempty" db:"last_message_time"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasParticipant reports whether ref takes part in the conversation
func (c *Conversation) HasParticipant(ref ActorRef) bool {
	return c.ParticipantA == ref || c.ParticipantB == ref
}

// OtherParticipant returns the counterpart of ref
func (c *Conversation) OtherParticipant(ref ActorRef) ActorRef {
	if c.ParticipantA == ref {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// ConversationSummary is a conversation as listed for one participant
type ConversationSummary struct {
	Conversation
	Other       ActorSummary `json:"participant"`
	LastMessage *Message     `json:"lastMessage,omitempty"`
	UnreadCount int64        `json:"unreadCount"`
}

// Message defines the message model based on the 'messages' table
type Message struct {
	ID             int64        `json:"id" db:"id" example:"99"`
	ConversationID int64        `json:"conversationId" db:"conversation_id" example:"5"`
	Sender         ActorSummary `json:"sender"`
	Content        string       `json:"content" db:"content" example:"Hi! Are you coming to the reunion?"`
	IsRead         bool         `json:"read" db:"is_read"`
	ReadAt         *time.Time   `json:"readAt,omitempty" db:"read_at"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
}
