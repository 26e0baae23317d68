package activity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"vidaview/database"
	activityRepo "vidaview/database/repository/activity"
	"vidaview/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingRecorder struct{ calls int }

func (f *failingRecorder) Record(ctx context.Context, entry models.ActivityLog) error {
	f.calls++
	return errors.New("disk full")
}

func TestLogSwallowsErrors(t *testing.T) {
	f := &failingRecorder{}
	at := time.Now()
	Log(context.Background(), f, zap.NewNop(),
		New(models.ActivityBooking, "b-1", ActionApprove, "pending", "confirmed", map[string]string{"status": "pending"}, map[string]string{"status": "confirmed"}, at),
		New(models.ActivityBooking, "b-1", ActionCancel, "confirmed", "cancelled", nil, map[string]string{"status": "cancelled"}, at),
	)
	assert.Equal(t, 2, f.calls)

	Log(context.Background(), nil, zap.NewNop(), New(models.ActivityBooking, "b-1", ActionCreate, "", "pending", nil, nil, at))
}

func TestNewSnapshotsBothSides(t *testing.T) {
	before := models.Booking{ID: "b-1", Status: models.BookingPending, Version: 1}
	after := before
	after.Status = models.BookingConfirmed
	after.Version = 2

	entry := New(models.ActivityBooking, "b-1", ActionApprove, string(before.Status), string(after.Status), before, after, time.Now())

	var oldData, newData models.Booking
	require.NoError(t, json.Unmarshal([]byte(entry.OldData), &oldData))
	require.NoError(t, json.Unmarshal([]byte(entry.NewData), &newData))
	assert.Equal(t, models.BookingPending, oldData.Status)
	assert.Equal(t, models.BookingConfirmed, newData.Status)
	assert.Equal(t, 2, newData.Version)

	created := New(models.ActivityPayment, "p-1", ActionCreate, "", "pending", nil, models.Payment{ID: "p-1"}, time.Now())
	assert.Empty(t, created.OldData)
	assert.Empty(t, created.FromStatus)
	assert.NotEmpty(t, created.NewData)
}

func TestStoreRecorderHistory(t *testing.T) {
	db, err := database.OpenSQL("sqlite", "file:activity_history?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	store := NewStoreRecorder(activityRepo.NewGormActivityRepo(db))
	ctx := context.Background()

	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, New(models.ActivityBooking, "b-1", ActionCreate, "", "pending", nil, map[string]int{"v": 1}, at)))
	require.NoError(t, store.Record(ctx, New(models.ActivityBooking, "b-1", ActionApprove, "pending", "confirmed", map[string]int{"v": 1}, map[string]int{"v": 2}, at.Add(time.Minute))))
	require.NoError(t, store.Record(ctx, New(models.ActivityBooking, "b-2", ActionCreate, "", "pending", nil, map[string]int{"v": 1}, at)))

	history, err := store.History(ctx, models.ActivityBooking, "b-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ActionCreate, history[0].Action)
	assert.Equal(t, ActionApprove, history[1].Action)
	assert.Equal(t, "pending", history[1].FromStatus)

	empty, err := store.History(ctx, models.ActivityPayment, "missing")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
