package activity

import (
	"context"
	"encoding/json"
	"time"

	activityRepo "vidaview/database/repository/activity"
	"vidaview/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actions recorded on the trail.
const (
	ActionCreate   = "create"
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionCancel   = "cancel"
	ActionActivate = "activate"
	ActionComplete = "complete"
	ActionConfirm  = "confirm"
	ActionVerify   = "verify"
	ActionAbandon  = "abandon"
	ActionRetry    = "retry"
)

// Recorder appends entries to the activity trail. Callers invoke it only
// after the change it describes has been committed.
type Recorder interface {
	Record(ctx context.Context, entry models.ActivityLog) error
}

// New builds an entry with JSON snapshots of before and after. A nil before
// leaves OldData and FromStatus empty.
func New(entityType, entityID, action, fromStatus, toStatus string, before, after any, at time.Time) models.ActivityLog {
	entry := models.ActivityLog{
		ID:         uuid.New().String(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		CreatedAt:  at,
	}
	if before != nil {
		entry.OldData = snapshot(before)
	}
	entry.NewData = snapshot(after)
	return entry
}

func snapshot(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// Log records every entry and logs failures. Recording errors never
// propagate to the caller.
func Log(ctx context.Context, recorder Recorder, logger *zap.Logger, entries ...models.ActivityLog) {
	if recorder == nil {
		return
	}
	for _, entry := range entries {
		if err := recorder.Record(ctx, entry); err != nil {
			logger.Warn("activity record failed",
				zap.String("entityType", entry.EntityType),
				zap.String("entityID", entry.EntityID),
				zap.String("action", entry.Action),
				zap.Error(err))
		}
	}
}

// StoreRecorder keeps the trail in the activity repository.
type StoreRecorder struct {
	Repo activityRepo.ActivityRepository
}

func NewStoreRecorder(repo activityRepo.ActivityRepository) *StoreRecorder {
	return &StoreRecorder{Repo: repo}
}

func (s *StoreRecorder) Record(ctx context.Context, entry models.ActivityLog) error {
	return s.Repo.Create(ctx, &entry)
}

// History returns the trail of one entity, oldest first.
func (s *StoreRecorder) History(ctx context.Context, entityType, entityID string) ([]models.ActivityLog, error) {
	entries, err := s.Repo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.ActivityLog{}
	}
	return entries, nil
}
