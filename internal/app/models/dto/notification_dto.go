package dto

// NotificationListQuery holds the filter of GET /notifications
type NotificationListQuery struct {
	Unread bool `form:"unread"`
}

// ReadAllResponse reports how many notifications were marked read
type ReadAllResponse struct {
	Updated int64 `json:"updated" example:"4"`
}
