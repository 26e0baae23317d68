package promotionRepo

import (
	"context"

	"vidaview/models"
)

// PromotionRepository stores promotion codes. Codes are matched in their
// normalized (upper-case, trimmed) form.
type PromotionRepository interface {
	Create(ctx context.Context, promotion *models.Promotion) error
	GetByID(ctx context.Context, id string) (*models.Promotion, error)
	GetByCode(ctx context.Context, code string) (*models.Promotion, error)
	List(ctx context.Context, enabledOnly bool) ([]models.Promotion, error)
	Update(ctx context.Context, promotion *models.Promotion) error
	Delete(ctx context.Context, id string) error
}
