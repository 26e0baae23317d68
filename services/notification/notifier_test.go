package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"vidaview/database"
	notificationRepo "vidaview/database/repository/notification"
	"vidaview/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(ctx context.Context, n models.Notification) error {
	f.calls++
	return errors.New("queue down")
}

func TestSendSkipsMissingRecipientAndSwallowsErrors(t *testing.T) {
	f := &failingNotifier{}
	at := time.Now()
	Send(context.Background(), f, zap.NewNop(),
		New("tenant-1", models.NotificationBooking, EventBookingApproved, "b-1", at),
		New("", models.NotificationBooking, EventBookingRequested, "b-1", at),
	)
	assert.Equal(t, 1, f.calls)

	Send(context.Background(), nil, zap.NewNop(), New("tenant-1", models.NotificationBooking, EventBookingApproved, "b-1", at))
}

func TestStoreNotifierPersists(t *testing.T) {
	db, err := database.OpenSQL("sqlite", "file:store_notifier?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	repo := notificationRepo.NewGormNotificationRepo(db)
	ctx := context.Background()

	store := NewStoreNotifier(repo)
	first := New("tenant-1", models.NotificationPayment, EventPaymentVerified, "p-1", time.Now().UTC())
	second := New("tenant-1", models.NotificationBooking, EventBookingActivated, "b-1", first.CreatedAt.Add(time.Second))
	require.NoError(t, store.Notify(ctx, first))
	require.NoError(t, store.Notify(ctx, second))

	got, total, err := repo.Query(ctx, models.NotificationFilter{UserID: "tenant-1", PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, got, 2)
	assert.Equal(t, EventBookingActivated, got[0].Event)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}
