package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vidaview/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UnitLocker serialises approvals and payment retries per unit. The returned
// func releases the lock.
type UnitLocker interface {
	Lock(ctx context.Context, unitID string) (func(), error)
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisUnitLocker holds a per-unit key with SET NX PX so approvals are
// serialised across API instances. A lock that is never released expires
// after TTL.
type RedisUnitLocker struct {
	Client *redis.Client
	TTL    time.Duration
	Wait   time.Duration
	Retry  time.Duration
	Logger *zap.Logger
}

func NewRedisUnitLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisUnitLocker {
	return &RedisUnitLocker{Client: client, TTL: ttl, Wait: ttl, Retry: 50 * time.Millisecond, Logger: logger}
}

func lockKey(unitID string) string {
	return "lock:unit:" + unitID
}

// release deletes the key if it still holds token. A failed release leaves
// the key to expire after TTL.
func (l *RedisUnitLocker) release(key, token string) {
	// a fresh context so a cancelled request still frees the key
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		l.Logger.Warn("unit lock release failed", zap.String("key", key), zap.Duration("ttl", l.TTL), zap.Error(err))
	}
}

func (l *RedisUnitLocker) Lock(ctx context.Context, unitID string) (func(), error) {
	key := lockKey(unitID)
	token := uuid.New().String()
	deadline := time.Now().Add(l.Wait)

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock for unit %s: %w", unitID, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, utils.NewAppErrorf(utils.KindUnitUnavailable, "unit %s is busy, retry the request", unitID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Retry):
		}
	}
}

// LocalUnitLocker serialises approvals within one process.
type LocalUnitLocker struct {
	mu    sync.Mutex
	units map[string]*sync.Mutex
}

func NewLocalUnitLocker() *LocalUnitLocker {
	return &LocalUnitLocker{units: make(map[string]*sync.Mutex)}
}

func (l *LocalUnitLocker) Lock(ctx context.Context, unitID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.units[unitID]
	if !ok {
		m = &sync.Mutex{}
		l.units[unitID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
