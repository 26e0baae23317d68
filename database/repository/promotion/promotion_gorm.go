package promotionRepo

import (
	"context"
	"errors"
	"fmt"

	"vidaview/database"
	"vidaview/models"

	"gorm.io/gorm"
)

type GormPromotionRepo struct {
	db *gorm.DB
}

func NewGormPromotionRepo(db *gorm.DB) *GormPromotionRepo {
	return &GormPromotionRepo{db: db}
}

func translateGormError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return database.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return database.ErrDuplicate
	}
	return err
}

func (repo *GormPromotionRepo) Create(ctx context.Context, promotion *models.Promotion) error {
	if err := repo.db.WithContext(ctx).Create(promotion).Error; err != nil {
		return translateGormError(err)
	}
	return nil
}

func (repo *GormPromotionRepo) GetByID(ctx context.Context, id string) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := repo.db.WithContext(ctx).First(&promotion, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &promotion, nil
}

func (repo *GormPromotionRepo) GetByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := repo.db.WithContext(ctx).First(&promotion, "code = ?", models.NormalizeCode(code)).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &promotion, nil
}

func (repo *GormPromotionRepo) List(ctx context.Context, enabledOnly bool) ([]models.Promotion, error) {
	query := repo.db.WithContext(ctx).Order("active_from DESC")
	if enabledOnly {
		query = query.Where("enabled = ?", true)
	}
	var promotions []models.Promotion
	if err := query.Find(&promotions).Error; err != nil {
		return nil, fmt.Errorf("error fetching promotions: %w", err)
	}
	return promotions, nil
}

func (repo *GormPromotionRepo) Update(ctx context.Context, promotion *models.Promotion) error {
	res := repo.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Where("id = ?", promotion.ID).
		Select("*").
		Updates(promotion)
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (repo *GormPromotionRepo) Delete(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Delete(&models.Promotion{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete promotion %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
