package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

func note(recipient string) dto.CreateNotificationRequest {
	return dto.CreateNotificationRequest{Recipient: recipient, Type: "email", Subject: "Fees due", Body: "Please pay"}
}

func TestBulkNotificationsAreAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := note("b@x.com")
	bad.Subject = ""
	_, err := f.svc.Notifications.CreateBulk(ctx, dto.BulkNotificationRequest{
		Notifications: []dto.CreateNotificationRequest{note("a@x.com"), bad},
	})
	require.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	list, err := f.svc.Notifications.ListForRecipient(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, list)

	out, err := f.svc.Notifications.CreateBulk(ctx, dto.BulkNotificationRequest{
		Notifications: []dto.CreateNotificationRequest{note("a@x.com"), note("a@x.com"), note("c@x.com")},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, n := range out {
		assert.Equal(t, models.NotificationSent, n.Status)
		assert.NotEmpty(t, n.NotificationID)
	}

	list, err = f.svc.Notifications.ListForRecipient(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	read, err := f.svc.Notifications.MarkRead(ctx, out[0].NotificationID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationRead, read.Status)

	_, err = f.svc.Notifications.MarkRead(ctx, "NOTIF-404")
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
	_, err = f.svc.Notifications.ListForRecipient(ctx, "")
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestAuditTrailRecordsActingUser(t *testing.T) {
	f := newFixture(t)
	ctx := audit.WithUser(context.Background(), "registrar")
	f.student(t, "STD-1")
	f.room(t, "R1")

	_, err := f.svc.Hostel.Allocate(ctx, dto.AllocateRoomRequest{StudentID: "STD-1", RoomID: "R1"})
	require.NoError(t, err)

	logs, err := f.svc.Audit.List(context.Background(), audit.Filter{UserID: "registrar"})
	require.NoError(t, err)
	// allocation create, room allocate, student allocate
	assert.Len(t, logs, 3)

	byAction, err := f.svc.Audit.List(context.Background(), audit.Filter{Action: ActionAllocate})
	require.NoError(t, err)
	assert.Len(t, byAction, 2)

	all, err := f.svc.Audit.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

type stubMailer struct {
	sent []string
	err  error
}

func (m *stubMailer) Send(_ context.Context, to, _, _ string) error {
	m.sent = append(m.sent, to)
	return m.err
}

func TestEmailDeliveryOutcomeIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mailer := &stubMailer{}
	f.svc.Notifications.mailer = mailer

	n, err := f.svc.Notifications.Create(ctx, note("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSent, n.Status)

	// user ids and non-email types are stored without delivery
	_, err = f.svc.Notifications.Create(ctx, note("STD-0001"))
	require.NoError(t, err)
	sms := note("b@x.com")
	sms.Type = "sms"
	_, err = f.svc.Notifications.Create(ctx, sms)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, mailer.sent)

	mailer.err = errors.New("550 mailbox unavailable")
	n, err = f.svc.Notifications.Create(ctx, note("c@x.com"))
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFailed, n.Status)
	assert.Equal(t, "550 mailbox unavailable", n.Response)

	stored, err := f.svc.Notifications.ListForRecipient(ctx, "c@x.com")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.NotificationFailed, stored[0].Status)
}
