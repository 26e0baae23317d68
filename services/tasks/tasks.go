package tasks

import (
	"encoding/json"
	"fmt"

	"vidaview/models"

	"github.com/hibiken/asynq"
)

const (
	TypeDeliverNotification = "notification:deliver"
	TypeCompleteExpired     = "booking:complete-expired"
)

func NewNotificationTask(n models.Notification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliverNotification, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.TaskID(n.ID)}

	return task, opts, nil
}

func ParseNotificationTask(task *asynq.Task) (models.Notification, error) {
	var n models.Notification
	if err := json.Unmarshal(task.Payload(), &n); err != nil {
		return models.Notification{}, fmt.Errorf("invalid notification payload: %w", err)
	}
	return n, nil
}

// NewCompleteExpiredTask is enqueued by the scheduler; it carries no payload.
func NewCompleteExpiredTask() *asynq.Task {
	return asynq.NewTask(TypeCompleteExpired, nil)
}
