package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vidaview/database"
	notificationRepo "vidaview/database/repository/notification"
	"vidaview/models"
	"vidaview/utils"

	"go.uber.org/zap"
)

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	PerPage       int                   `json:"perPage"`
}

// Inbox reads and manages stored notifications on behalf of their recipient.
// A notification addressed to someone else is reported as not found.
type Inbox struct {
	Repo   notificationRepo.NotificationRepository
	Logger *zap.Logger
}

func NewInbox(repo notificationRepo.NotificationRepository, logger *zap.Logger) *Inbox {
	return &Inbox{Repo: repo, Logger: logger}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return utils.NewValidationError("userId", "user id is required")
	}
	return nil
}

func (i *Inbox) List(ctx context.Context, filter models.NotificationFilter) (NotificationPage, error) {
	if err := requireUser(filter.UserID); err != nil {
		return NotificationPage{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}
	notifications, total, err := i.Repo.Query(ctx, filter)
	if err != nil {
		return NotificationPage{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return NotificationPage{Notifications: notifications, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

func (i *Inbox) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	count, err := i.Repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

func (i *Inbox) owned(ctx context.Context, userID, id string) (*models.Notification, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	n, err := i.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewAppErrorf(utils.KindNotFound, "notification %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch notification %s: %w", id, err)
	}
	if n.UserID != userID {
		return nil, utils.NewAppErrorf(utils.KindNotFound, "notification %s not found", id)
	}
	return n, nil
}

// MarkRead flags one notification as read. Marking it twice is harmless.
func (i *Inbox) MarkRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	n, err := i.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	if err := i.Repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewAppErrorf(utils.KindNotFound, "notification %s not found", id)
		}
		return nil, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	n.Read = true
	return n, nil
}

func (i *Inbox) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	changed, err := i.Repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	i.Logger.Debug("notifications marked read", zap.String("userID", userID), zap.Int64("count", changed))
	return changed, nil
}

func (i *Inbox) Delete(ctx context.Context, userID, id string) error {
	if _, err := i.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := i.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return utils.NewAppErrorf(utils.KindNotFound, "notification %s not found", id)
		}
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	return nil
}
