package unitRepo

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
	"gorm.io/gorm/clause"
)

// UnitRepository reads unit listings. Upsert exists for seeding and admin sync.
type UnitRepository interface {
	GetByID(ctx context.Context, id string) (*models.Unit, error)
	Upsert(ctx context.Context, unit *models.Unit) error
}

type MongoUnitRepo struct {
	coll *mongo.Collection
}

func NewMongoUnitRepo(db *mongo.Database) *MongoUnitRepo {
	return &MongoUnitRepo{coll: db.Collection("units")}
}

func (repo *MongoUnitRepo) GetByID(ctx context.Context, id string) (*models.Unit, error) {
	var unit models.Unit
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&unit); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching unit %s: %w", id, err)
	}
	return &unit, nil
}

func (repo *MongoUnitRepo) Upsert(ctx context.Context, unit *models.Unit) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := repo.coll.ReplaceOne(ctx, bson.M{"id": unit.ID}, unit, opts); err != nil {
		return fmt.Errorf("failed to upsert unit %s: %w", unit.ID, err)
	}
	return nil
}

type GormUnitRepo struct {
	db *gorm.DB
}

func NewGormUnitRepo(db *gorm.DB) *GormUnitRepo {
	return &GormUnitRepo{db: db}
}

func (repo *GormUnitRepo) GetByID(ctx context.Context, id string) (*models.Unit, error) {
	var unit models.Unit
	if err := repo.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching unit %s: %w", id, err)
	}
	return &unit, nil
}

func (repo *GormUnitRepo) Upsert(ctx context.Context, unit *models.Unit) error {
	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(unit).Error
	if err != nil {
		return fmt.Errorf("failed to upsert unit %s: %w", unit.ID, err)
	}
	return nil
}
