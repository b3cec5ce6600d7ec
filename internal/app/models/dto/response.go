package dto

import (
	"net/http"
	"time"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	StatusCode int          `json:"statusCode" example:"200"`
	Success    bool         `json:"success" example:"true"`
	Message    string       `json:"message" example:"Operation completed successfully"`
	Data       interface{}  `json:"data,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
	Timestamp  time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewSuccessResponse wraps data in a 200 envelope. The optional message replaces the default.
func NewSuccessResponse(data interface{}, message ...string) APIResponse {
	return newSuccess(http.StatusOK, data, message)
}

// NewCreatedResponse wraps data in a 201 envelope
func NewCreatedResponse(data interface{}, message ...string) APIResponse {
	return newSuccess(http.StatusCreated, data, message)
}

func newSuccess(status int, data interface{}, message []string) APIResponse {
	msg := "Operation completed successfully"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return APIResponse{
		StatusCode: status,
		Success:    true,
		Message:    msg,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

// NewErrorResponse builds an error envelope. The top-level message mirrors the detail.
func NewErrorResponse(status int, detail *ErrorDetail) APIResponse {
	return APIResponse{
		StatusCode: status,
		Success:    false,
		Message:    detail.Message,
		Error:      detail,
		Timestamp:  time.Now().UTC(),
	}
}

// PaginationInfo describes a page of a list response
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"4"`
	TotalCount  int64 `json:"totalCount" example:"73"`
	HasMore     bool  `json:"hasMore" example:"true"`
}

// PaginatedResponse represents a paginated list with metadata
type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// CountResponse carries a single counter
type CountResponse struct {
	Count int64 `json:"count" example:"3"`
}
