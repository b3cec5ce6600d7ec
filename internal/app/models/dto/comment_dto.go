package dto

import "github.com/yigit/alumnet/internal/app/models"

// CreateCommentRequest is the body of POST /comments. A parent id makes it a reply.
type CreateCommentRequest struct {
	PostID          int64  `json:"postId" binding:"required,min=1" example:"1"`
	Content         string `json:"content" binding:"required,max=2000" example:"Count me in!"`
	ParentCommentID *int64 `json:"parentCommentId" binding:"omitempty,min=1" example:"10"`
}

// UpdateCommentRequest is the body of PATCH /comments/:id
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// CommentListQuery holds the ordering of GET /posts/:postId/comments
type CommentListQuery struct {
	SortBy string `form:"sortBy" binding:"omitempty,oneof=top new"`
	Order  string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// ReplyResponse is a reply with its expansion hint
type ReplyResponse struct {
	models.Comment
	CanExpand bool `json:"canExpand" example:"true"`
}

// CommentThreadNode is a comment with its nested replies
type CommentThreadNode struct {
	models.Comment
	Replies        []*CommentThreadNode `json:"replies"`
	HasMoreReplies bool                 `json:"hasMoreReplies"`
}
