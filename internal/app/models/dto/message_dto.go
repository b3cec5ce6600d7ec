package dto

// CreateConversationRequest is the body of POST /messages/conversation
type CreateConversationRequest struct {
	ParticipantID   int64  `json:"participantId" binding:"required,min=1" example:"7"`
	ParticipantKind string `json:"participantKind" binding:"omitempty,oneof=user admin" example:"user"`
}

// SendMessageRequest is the body of POST /messages/send
type SendMessageRequest struct {
	ConversationID int64  `json:"conversationId" binding:"required,min=1" example:"5"`
	Content        string `json:"content" binding:"required,max=4000" example:"See you on Saturday"`
}

// MarkReadResponse reports how many messages were marked read
type MarkReadResponse struct {
	MarkedRead int64 `json:"markedRead" example:"3"`
}
