package notification

import (
	"context"
	"fmt"
	"time"

	notificationRepo "vidaview/database/repository/notification"
	"vidaview/models"
	"vidaview/services/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Event keys carried by notifications. Clients localise them.
const (
	EventBookingRequested = "booking_requested"
	EventBookingCreated   = "booking_created"
	EventBookingApproved  = "booking_approved"
	EventBookingRejected  = "booking_rejected"
	EventBookingCancelled = "booking_cancelled"
	EventBookingActivated = "booking_activated"
	EventBookingCompleted = "booking_completed"
	EventPaymentRequested = "payment_requested"
	EventPaymentSubmitted = "payment_submitted"
	EventPaymentVerified  = "payment_verified"
	EventPaymentRejected  = "payment_rejected"
)

// Notifier delivers a notification. Callers invoke it only after the state
// change it describes has been committed.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// New builds a notification with a fresh id.
func New(userID, kind, event, relatedID string, at time.Time) models.Notification {
	return models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      kind,
		Event:     event,
		RelatedID: relatedID,
		CreatedAt: at,
	}
}

// QueueNotifier hands notifications to the asynq worker.
type QueueNotifier struct {
	Client *asynq.Client
}

func NewQueueNotifier(client *asynq.Client) *QueueNotifier {
	return &QueueNotifier{Client: client}
}

func (q *QueueNotifier) Notify(ctx context.Context, n models.Notification) error {
	task, opts, err := tasks.NewNotificationTask(n)
	if err != nil {
		return err
	}
	if _, err := q.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue notification %s: %w", n.ID, err)
	}
	return nil
}

// StoreNotifier persists notifications for in-app display.
type StoreNotifier struct {
	Repo notificationRepo.NotificationRepository
}

func NewStoreNotifier(repo notificationRepo.NotificationRepository) *StoreNotifier {
	return &StoreNotifier{Repo: repo}
}

func (s *StoreNotifier) Notify(ctx context.Context, n models.Notification) error {
	return s.Repo.Create(ctx, &n)
}

// Send delivers every notification and logs failures. Delivery errors never
// propagate to the caller.
func Send(ctx context.Context, notifier Notifier, logger *zap.Logger, notifications ...models.Notification) {
	if notifier == nil {
		return
	}
	for _, n := range notifications {
		if n.UserID == "" {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			logger.Warn("notification delivery failed",
				zap.String("event", n.Event),
				zap.String("userID", n.UserID),
				zap.String("relatedID", n.RelatedID),
				zap.Error(err))
		}
	}
}
