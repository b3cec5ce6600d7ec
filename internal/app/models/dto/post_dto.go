package dto

// CreatePostRequest is the body of POST /posts
type CreatePostRequest struct {
	Content  string `json:"content" binding:"required,max=5000" example:"Who is coming to the 2015 reunion?"`
	Category string `json:"category" binding:"omitempty,max=50" example:"events"`
}

// UpdatePostRequest is the body of PATCH /posts/:id
type UpdatePostRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// PostFeedQuery holds the filters of GET /posts
type PostFeedQuery struct {
	Category string `form:"category" binding:"omitempty,max=50"`
	AuthorID *int64 `form:"authorId" binding:"omitempty,min=1"`
}

// SaveResponse reports the bookmark state after a toggle
type SaveResponse struct {
	Saved bool `json:"saved" example:"true"`
}

// PinResponse reports the pin state after a toggle
type PinResponse struct {
	Pinned bool `json:"pinned" example:"true"`
}

// RecountResponse reports the reconciled comment count of a post
type RecountResponse struct {
	PostID        int64 `json:"postId" example:"1"`
	CommentsCount int   `json:"commentsCount" example:"12"`
}
