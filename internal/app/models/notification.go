package models

// Notification is a message sent to a recipient (email address or user id).
type Notification struct {
	NotificationID string `json:"notification_id"`
	Recipient      string `json:"recipient"`
	Type           string `json:"type"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	SentOn         string `json:"sent_on"`
	Status         string `json:"status"`
	Response       string `json:"response"`
}
