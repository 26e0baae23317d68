package activityRepo

import (
	"context"
	"fmt"
	"time"

	"vidaview/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// ActivityRepository stores the append-only activity trail.
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	// ListByEntity returns the entity's entries oldest first.
	ListByEntity(ctx context.Context, entityType, entityID string) ([]models.ActivityLog, error)
}

type MongoActivityRepo struct {
	coll *mongo.Collection
}

func NewMongoActivityRepo(db *mongo.Database) (*MongoActivityRepo, error) {
	repo := &MongoActivityRepo{coll: db.Collection("activity_logs")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create activity indexes: %w", err)
	}
	return repo, nil
}

func (repo *MongoActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if _, err := repo.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert activity failed: %w", err)
	}
	return nil
}

func (repo *MongoActivityRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.ActivityLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"entity_type": entityType, "entity_id": entityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching activity: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.ActivityLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("error decoding activity: %w", err)
	}
	return entries, nil
}

type GormActivityRepo struct {
	db *gorm.DB
}

func NewGormActivityRepo(db *gorm.DB) *GormActivityRepo {
	return &GormActivityRepo{db: db}
}

func (repo *GormActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if err := repo.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert activity failed: %w", err)
	}
	return nil
}

func (repo *GormActivityRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := repo.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching activity: %w", err)
	}
	return entries, nil
}
