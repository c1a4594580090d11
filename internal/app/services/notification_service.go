package services

import (
	"context"
	"sort"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
	"github.com/yigit/collegeerp/internal/pkg/email"
	"github.com/yigit/collegeerp/internal/pkg/validation"
	"github.com/yigit/collegeerp/internal/store"
)

// NotificationService records notifications sent to students and applicants.
type NotificationService struct {
	base
	mailer email.Sender
}

func notificationFrom(req dto.CreateNotificationRequest) *models.Notification {
	return &models.Notification{
		Recipient: req.Recipient,
		Type:      req.Type,
		Subject:   req.Subject,
		Body:      req.Body,
	}
}

// Create stores one notification.
func (s *NotificationService) Create(ctx context.Context, req dto.CreateNotificationRequest) (*models.Notification, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	n := notificationFrom(req)
	err := s.store.Update(ctx, nil, func(tx *store.Tx) error {
		return s.repos.Notifications.Create(tx, n)
	})
	if err != nil {
		return nil, err
	}
	s.deliver(ctx, n)
	return n, nil
}

// CreateBulk stores every notification or none of them.
func (s *NotificationService) CreateBulk(ctx context.Context, req dto.BulkNotificationRequest) ([]*models.Notification, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var out []*models.Notification
	err := s.store.Update(ctx, nil, func(tx *store.Tx) error {
		out = make([]*models.Notification, 0, len(req.Notifications))
		for _, r := range req.Notifications {
			n := notificationFrom(r)
			if err := s.repos.Notifications.Create(tx, n); err != nil {
				return err
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("count", len(out)).Msg("Bulk notifications stored")
	for _, n := range out {
		s.deliver(ctx, n)
	}
	return out, nil
}

// deliver sends email notifications once they are stored. A failed send is
// recorded on the notification and does not fail the request.
func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) {
	if s.mailer == nil || n.Type != models.NotificationEmail || !email.IsAddress(n.Recipient) {
		return
	}
	sendErr := s.mailer.Send(ctx, n.Recipient, n.Subject, n.Body)
	if sendErr == nil {
		return
	}
	s.log.Warn().Err(sendErr).Str("notification_id", n.NotificationID).Msg("Email delivery failed")
	updated, err := s.UpdateStatus(ctx, n.NotificationID, dto.UpdateNotificationRequest{
		Status:   models.NotificationFailed,
		Response: sendErr.Error(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("notification_id", n.NotificationID).Msg("Failed to record delivery failure")
		return
	}
	*n = *updated
}

// ListForRecipient returns a recipient's notifications, newest first.
func (s *NotificationService) ListForRecipient(ctx context.Context, recipient string) ([]*models.Notification, error) {
	if recipient == "" {
		return nil, apperrors.NewMissingFieldsError("recipient")
	}
	var out []*models.Notification
	err := s.store.View(ctx, func(tx *store.Tx) (err error) {
		out, err = s.repos.Notifications.FindAll(tx, "recipient", recipient)
		return err
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentOn > out[j].SentOn })
	return out, err
}

// UpdateStatus records a delivery outcome.
func (s *NotificationService) UpdateStatus(ctx context.Context, id string, req dto.UpdateNotificationRequest) (*models.Notification, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var updated *models.Notification
	err := s.store.Update(ctx, []string{store.LockKey("notification", id)}, func(tx *store.Tx) error {
		n, err := s.repos.Notifications.Get(tx, id)
		if err != nil {
			return err
		}
		n.Status = req.Status
		if req.Response != "" {
			n.Response = req.Response
		}
		if err := s.repos.Notifications.Update(tx, id, n, "", ""); err != nil {
			return err
		}
		updated = n
		return nil
	})
	return updated, err
}

// MarkRead marks a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	return s.UpdateStatus(ctx, id, dto.UpdateNotificationRequest{Status: models.NotificationRead})
}
