package models

// Admission statuses
const (
	AdmissionPending     = "pending"
	AdmissionUnderReview = "under_review"
	AdmissionApproved    = "approved"
	AdmissionRejected    = "rejected"
	AdmissionAdmitted    = "admitted"
)

// AdmissionStatuses lists every valid admission status.
var AdmissionStatuses = []string{
	AdmissionPending, AdmissionUnderReview, AdmissionApproved, AdmissionRejected, AdmissionAdmitted,
}

// Enrollment statuses of a student
const (
	StudentActive    = "active"
	StudentInactive  = "inactive"
	StudentGraduated = "graduated"
	StudentSuspended = "suspended"
)

// Room statuses
const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

// Allocation statuses
const (
	AllocationActive   = "active"
	AllocationInactive = "inactive"
)

// Payment statuses
const (
	PaymentCompleted = "completed"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Notification statuses
const (
	NotificationSent   = "sent"
	NotificationRead   = "read"
	NotificationFailed = "failed"
)

// NotificationEmail is the notification type delivered over SMTP.
const NotificationEmail = "email"

// Course enrollment statuses
const (
	EnrollmentEnrolled  = "enrolled"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)
