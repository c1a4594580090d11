package dto

// CreateNotificationRequest is the payload for one notification.
type CreateNotificationRequest struct {
	Recipient string `json:"recipient" validate:"required,notblank"`
	Type      string `json:"type" validate:"required,notblank"`
	Subject   string `json:"subject" validate:"required,notblank"`
	Body      string `json:"body" validate:"required"`
}

// BulkNotificationRequest sends several notifications at once; they are
// stored together or not at all.
type BulkNotificationRequest struct {
	Notifications []CreateNotificationRequest `json:"notifications" validate:"required,min=1,dive"`
}

// UpdateNotificationRequest records a delivery outcome.
type UpdateNotificationRequest struct {
	Status   string `json:"status" validate:"required,oneof=sent read failed"`
	Response string `json:"response"`
}
