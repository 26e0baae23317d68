package promotionRepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"vidaview/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "promotion:code:"

// CachedPromotionRepo fronts a PromotionRepository with a Redis cache for code
// lookups. Writes go to the inner repository and evict the cached code. Cache
// failures fall through to the inner repository.
type CachedPromotionRepo struct {
	PromotionRepository
	Client *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func NewCachedPromotionRepo(inner PromotionRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedPromotionRepo {
	return &CachedPromotionRepo{
		PromotionRepository: inner,
		Client:              client,
		TTL:                 ttl,
		Logger:              logger,
	}
}

func cacheKey(code string) string {
	return cacheKeyPrefix + models.NormalizeCode(code)
}

func (repo *CachedPromotionRepo) GetByCode(ctx context.Context, code string) (*models.Promotion, error) {
	key := cacheKey(code)
	data, err := repo.Client.Get(ctx, key).Bytes()
	if err == nil {
		var promotion models.Promotion
		if err := json.Unmarshal(data, &promotion); err == nil {
			return &promotion, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		repo.Logger.Warn("promotion cache read failed", zap.String("key", key), zap.Error(err))
	}

	promotion, err := repo.PromotionRepository.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(promotion); err == nil {
		if err := repo.Client.Set(ctx, key, data, repo.TTL).Err(); err != nil {
			repo.Logger.Warn("promotion cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return promotion, nil
}

func (repo *CachedPromotionRepo) Update(ctx context.Context, promotion *models.Promotion) error {
	previous, err := repo.PromotionRepository.GetByID(ctx, promotion.ID)
	if err != nil {
		return err
	}
	if err := repo.PromotionRepository.Update(ctx, promotion); err != nil {
		return err
	}
	repo.evict(ctx, previous.Code, promotion.Code)
	return nil
}

func (repo *CachedPromotionRepo) Delete(ctx context.Context, id string) error {
	previous, err := repo.PromotionRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := repo.PromotionRepository.Delete(ctx, id); err != nil {
		return err
	}
	repo.evict(ctx, previous.Code)
	return nil
}

func (repo *CachedPromotionRepo) evict(ctx context.Context, codes ...string) {
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, cacheKey(code))
	}
	if err := repo.Client.Del(ctx, keys...).Err(); err != nil {
		repo.Logger.Warn("promotion cache eviction failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
