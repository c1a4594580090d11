package repositories

import (
	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/idgen"
	"github.com/yigit/collegeerp/internal/store"
)

// NotificationRepository handles the Notifications table.
type NotificationRepository struct {
	tableRepo[models.Notification]
	ids idgen.Generator
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(log *audit.Logger, ids idgen.Generator, clock helpers.Clock) *NotificationRepository {
	return &NotificationRepository{
		tableRepo: tableRepo[models.Notification]{
			table:  store.Notifications,
			entity: "Notification",
			audit:  log,
			clock:  clock,
		},
		ids: ids,
	}
}

// Create stores a notification as sent.
func (r *NotificationRepository) Create(tx *store.Tx, n *models.Notification) error {
	n.NotificationID = r.ids.NewID(idgen.Notification)
	n.SentOn = r.now()
	if n.Status == "" {
		n.Status = models.NotificationSent
	}
	return r.insert(tx, n.NotificationID, n, "", "")
}
