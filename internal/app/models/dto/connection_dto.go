package dto

// ConnectionRequest is the body of POST /connections/request
type ConnectionRequest struct {
	RecipientID int64 `json:"recipientId" binding:"required,min=1" example:"2"`
}

// ConnectionListQuery holds the filter of GET /connections
type ConnectionListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending accepted rejected"`
}
