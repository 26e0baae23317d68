package notificationRepo

import (
	"context"
	"errors"
	"fmt"

	"vidaview/database"
	"vidaview/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// Query returns one page of a user's notifications, newest first, and the
	// number of matches.
	Query(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead returns how many notifications changed.
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

type MongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepo(db *mongo.Database) *MongoNotificationRepo {
	return &MongoNotificationRepo{coll: db.Collection("notifications")}
}

func (repo *MongoNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	if _, err := repo.coll.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("insert notification failed: %w", err)
	}
	return nil
}

func (repo *MongoNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&notification); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching notification: %w", err)
	}
	return &notification, nil
}

func (repo *MongoNotificationRepo) Query(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	query := bson.M{"user_id": filter.UserID}
	if filter.Read != nil {
		query["read"] = *filter.Read
	}
	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %w", err)
	}

	page, perPage := normalizePage(filter.Page, filter.PerPage)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))
	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error fetching notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, fmt.Errorf("error decoding notifications: %w", err)
	}
	return notifications, total, nil
}

func (repo *MongoNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := repo.coll.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("error counting notifications: %w", err)
	}
	return count, nil
}

func (repo *MongoNotificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to update notification %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (repo *MongoNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := repo.coll.UpdateMany(ctx, bson.M{"user_id": userID, "read": false}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to update notifications of %s: %w", userID, err)
	}
	return res.ModifiedCount, nil
}

func (repo *MongoNotificationRepo) Delete(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

type GormNotificationRepo struct {
	db *gorm.DB
}

func NewGormNotificationRepo(db *gorm.DB) *GormNotificationRepo {
	return &GormNotificationRepo{db: db}
}

func (repo *GormNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	if err := repo.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("insert notification failed: %w", err)
	}
	return nil
}

func (repo *GormNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := repo.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching notification: %w", err)
	}
	return &notification, nil
}

func (repo *GormNotificationRepo) Query(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	query := repo.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", filter.UserID)
	if filter.Read != nil {
		query = query.Where("read = ?", *filter.Read)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %w", err)
	}

	page, perPage := normalizePage(filter.Page, filter.PerPage)
	var notifications []models.Notification
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error fetching notifications: %w", err)
	}
	return notifications, total, nil
}

func (repo *GormNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("error counting notifications: %w", err)
	}
	return count, nil
}

func (repo *GormNotificationRepo) MarkRead(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to update notification %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (repo *GormNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := repo.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update notifications of %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

func (repo *GormNotificationRepo) Delete(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
