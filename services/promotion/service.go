package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidaview/database"
	promotionRepo "vidaview/database/repository/promotion"
	"vidaview/models"
	"vidaview/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// Validator resolves promotion codes into discount descriptors.
type Validator interface {
	Validate(ctx context.Context, code string, referenceDate time.Time) (models.DiscountDescriptor, error)
}

// PromotionService covers validation plus administrative management of codes.
type PromotionService interface {
	Validator
	CreatePromotion(ctx context.Context, input PromotionInput) (*models.Promotion, error)
	UpdatePromotion(ctx context.Context, id string, input PromotionInput) (*models.Promotion, error)
	DeletePromotion(ctx context.Context, id string) error
	GetPromotion(ctx context.Context, id string) (*models.Promotion, error)
	ListPromotions(ctx context.Context, enabledOnly bool) ([]models.Promotion, error)
}

// PromotionInput is the editable part of a promotion.
type PromotionInput struct {
	Code        string               `json:"code"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Kind        models.PromotionKind `json:"kind"`
	Value       decimal.Decimal      `json:"value"`
	ActiveFrom  string               `json:"activeFrom"`
	ActiveUntil string               `json:"activeUntil"`
	Enabled     bool                 `json:"enabled"`
}

type DefaultPromotionService struct {
	Repo   promotionRepo.PromotionRepository
	Clock  utils.Clock
	Logger *zap.Logger
}

func NewDefaultPromotionService(repo promotionRepo.PromotionRepository, clock utils.Clock, logger *zap.Logger) *DefaultPromotionService {
	return &DefaultPromotionService{Repo: repo, Clock: clock, Logger: logger}
}

// Validate looks up code and checks it is usable on referenceDate. It never
// records usage.
func (s *DefaultPromotionService) Validate(ctx context.Context, code string, referenceDate time.Time) (models.DiscountDescriptor, error) {
	normalized := models.NormalizeCode(code)
	if normalized == "" {
		return models.DiscountDescriptor{}, utils.NewValidationError("promoCode", "promotion code is required")
	}

	promo, err := s.Repo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.DiscountDescriptor{}, utils.NewAppErrorf(utils.KindPromotionNotFound, "promotion %s not found", normalized)
		}
		return models.DiscountDescriptor{}, fmt.Errorf("failed to look up promotion %s: %w", normalized, err)
	}

	if !promo.UsableOn(referenceDate) {
		return models.DiscountDescriptor{}, utils.NewAppErrorf(utils.KindPromotionInactive, "promotion %s is not active on %s",
			normalized, referenceDate.Format(utils.DateLayout))
	}
	return promo.Descriptor(), nil
}

func (input PromotionInput) toModel() (models.Promotion, error) {
	code := models.NormalizeCode(input.Code)
	if code == "" {
		return models.Promotion{}, utils.NewValidationError("code", "code is required")
	}
	if strings.ContainsAny(code, " \t") {
		return models.Promotion{}, utils.NewValidationError("code", "code must not contain spaces")
	}
	if strings.TrimSpace(input.Title) == "" {
		return models.Promotion{}, utils.NewValidationError("title", "title is required")
	}

	switch input.Kind {
	case models.PromotionPercent:
		if !input.Value.IsPositive() || input.Value.GreaterThan(hundred) {
			return models.Promotion{}, utils.NewValidationError("value", "percent value must be in (0, 100]")
		}
	case models.PromotionFixedAmount:
		if !input.Value.IsPositive() {
			return models.Promotion{}, utils.NewValidationError("value", "fixed amount must be positive")
		}
	default:
		return models.Promotion{}, utils.NewValidationError("kind", "kind must be percent or fixed_amount")
	}

	from, err := utils.ParseDate(input.ActiveFrom)
	if err != nil {
		return models.Promotion{}, utils.NewValidationError("activeFrom", "activeFrom must be YYYY-MM-DD")
	}
	until, err := utils.ParseDate(input.ActiveUntil)
	if err != nil {
		return models.Promotion{}, utils.NewValidationError("activeUntil", "activeUntil must be YYYY-MM-DD")
	}
	if until.Before(from) {
		return models.Promotion{}, utils.NewValidationError("activeUntil", "activeUntil must not be before activeFrom")
	}

	return models.Promotion{
		Code:        code,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Kind:        input.Kind,
		Value:       input.Value,
		ActiveFrom:  from,
		ActiveUntil: until,
		Enabled:     input.Enabled,
	}, nil
}

func (s *DefaultPromotionService) CreatePromotion(ctx context.Context, input PromotionInput) (*models.Promotion, error) {
	promo, err := input.toModel()
	if err != nil {
		return nil, err
	}
	now := s.Clock()
	promo.ID = uuid.New().String()
	promo.CreatedAt = now
	promo.UpdatedAt = now

	if err := s.Repo.Create(ctx, &promo); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, utils.NewValidationError("code", "code already exists")
		}
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}
	s.Logger.Info("promotion created", zap.String("id", promo.ID), zap.String("code", promo.Code))
	return &promo, nil
}

// UpdatePromotion replaces the editable fields. Existing bookings keep the
// breakdown they were created with.
func (s *DefaultPromotionService) UpdatePromotion(ctx context.Context, id string, input PromotionInput) (*models.Promotion, error) {
	existing, err := s.GetPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	promo, err := input.toModel()
	if err != nil {
		return nil, err
	}
	promo.ID = existing.ID
	promo.CreatedAt = existing.CreatedAt
	promo.UpdatedAt = s.Clock()

	if err := s.Repo.Update(ctx, &promo); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, utils.NewValidationError("code", "code already exists")
		case errors.Is(err, database.ErrNotFound):
			return nil, utils.NewAppErrorf(utils.KindNotFound, "promotion %s not found", id)
		}
		return nil, fmt.Errorf("failed to update promotion %s: %w", id, err)
	}
	s.Logger.Info("promotion updated", zap.String("id", promo.ID), zap.String("code", promo.Code))
	return &promo, nil
}

func (s *DefaultPromotionService) DeletePromotion(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return utils.NewAppErrorf(utils.KindNotFound, "promotion %s not found", id)
		}
		return fmt.Errorf("failed to delete promotion %s: %w", id, err)
	}
	s.Logger.Info("promotion deleted", zap.String("id", id))
	return nil
}

func (s *DefaultPromotionService) GetPromotion(ctx context.Context, id string) (*models.Promotion, error) {
	promo, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewAppErrorf(utils.KindNotFound, "promotion %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch promotion %s: %w", id, err)
	}
	return promo, nil
}

func (s *DefaultPromotionService) ListPromotions(ctx context.Context, enabledOnly bool) ([]models.Promotion, error) {
	promos, err := s.Repo.List(ctx, enabledOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	return promos, nil
}
