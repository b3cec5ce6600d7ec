package dto

// ReportPostRequest is the body of POST /posts/:id/report
type ReportPostRequest struct {
	Reason      string `json:"reason" binding:"required,oneof=spam harassment hate_speech inappropriate misinformation other" example:"spam"`
	Description string `json:"description" binding:"omitempty,max=1000" example:"Same link posted in every thread"`
}

// ReportPostResponse acknowledges a report
type ReportPostResponse struct {
	Reported bool `json:"reported" example:"true"`
}

// BanUserRequest is the body of POST /admin/users/:id/ban. Duration is in days; a blank
// reason is stored as no reason.
type BanUserRequest struct {
	Type     string `json:"type" binding:"required,oneof=temp_banned suspended" example:"temp_banned"`
	Duration int    `json:"duration" binding:"omitempty,min=1,max=3650" example:"7"`
	Reason   string `json:"reason" binding:"max=500" example:"Repeated harassment"`
}

// ReportListQuery holds the filters of GET /admin/reports
type ReportListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending reviewed resolved dismissed"`
}
