package promotionRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidaview/database"
	"vidaview/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPromotionRepo struct {
	coll *mongo.Collection
}

func NewMongoPromotionRepo(db *mongo.Database) (*MongoPromotionRepo, error) {
	repo := &MongoPromotionRepo{coll: db.Collection("promotions")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create promotion indexes: %w", err)
	}
	return repo, nil
}

func (repo *MongoPromotionRepo) Create(ctx context.Context, promotion *models.Promotion) error {
	if _, err := repo.coll.InsertOne(ctx, promotion); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("insert promotion failed: %w", err)
	}
	return nil
}

func (repo *MongoPromotionRepo) findOne(ctx context.Context, filter bson.M) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := repo.coll.FindOne(ctx, filter).Decode(&promotion); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching promotion: %w", err)
	}
	return &promotion, nil
}

func (repo *MongoPromotionRepo) GetByID(ctx context.Context, id string) (*models.Promotion, error) {
	return repo.findOne(ctx, bson.M{"id": id})
}

func (repo *MongoPromotionRepo) GetByCode(ctx context.Context, code string) (*models.Promotion, error) {
	return repo.findOne(ctx, bson.M{"code": models.NormalizeCode(code)})
}

func (repo *MongoPromotionRepo) List(ctx context.Context, enabledOnly bool) ([]models.Promotion, error) {
	filter := bson.M{}
	if enabledOnly {
		filter["enabled"] = true
	}
	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "active_from", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error fetching promotions: %w", err)
	}
	defer cursor.Close(ctx)

	var promotions []models.Promotion
	if err := cursor.All(ctx, &promotions); err != nil {
		return nil, fmt.Errorf("error decoding promotions: %w", err)
	}
	return promotions, nil
}

func (repo *MongoPromotionRepo) Update(ctx context.Context, promotion *models.Promotion) error {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"id": promotion.ID}, promotion)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("failed to update promotion %s: %w", promotion.ID, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (repo *MongoPromotionRepo) Delete(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete promotion %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}
