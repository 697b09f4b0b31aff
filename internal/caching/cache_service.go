package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"garageflow/internal/common"
	"garageflow/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// releaseScript deletes the lock only while it still holds our token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// ReleaseFunc gives back a billing lock
type ReleaseFunc func(ctx context.Context) error

type CacheService interface {
	// AcquireBillingLock returns ErrBillingInProgress when another run holds the lock
	AcquireBillingLock(ctx context.Context, contractID uuid.UUID, period string, ttl time.Duration) (ReleaseFunc, error)

	// Billing calculation caching
	GetCalculation(ctx context.Context, contractID uuid.UUID, period string) (*models.BillingCalculation, error)
	SetCalculation(ctx context.Context, calc *models.BillingCalculation, ttl time.Duration) error

	Ping(ctx context.Context) error
}

// redisClient is the part of *redis.Client the cache uses
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type redisCacheService struct {
	client redisClient
}

func NewRedisCacheService(addr, password string, db int) (CacheService, *redis.Client) {
	client := redis.NewClient(&redis.Options{
		Addr:     ParseRedisAddr(addr),
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Str("addr", addr).Msg("Redis ping failed on initialization")
	} else {
		log.Debug().Msg("Redis connection established")
	}

	return &redisCacheService{client: client}, client
}

// ParseRedisAddr strips a redis:// or rediss:// scheme, leaving host:port
func ParseRedisAddr(addr string) string {
	for _, scheme := range []string{"redis://", "rediss://"} {
		if strings.HasPrefix(addr, scheme) {
			return strings.TrimPrefix(addr, scheme)
		}
	}
	return addr
}

func lockKey(contractID uuid.UUID, period string) string {
	return fmt.Sprintf("garageflow:billing-lock:%s:%s", contractID.String(), period)
}

func calculationKey(contractID uuid.UUID, period string) string {
	return fmt.Sprintf("garageflow:billing:%s:%s", contractID.String(), period)
}

func (r *redisCacheService) AcquireBillingLock(ctx context.Context, contractID uuid.UUID, period string, ttl time.Duration) (ReleaseFunc, error) {
	key := lockKey(contractID, period)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire billing lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: contract %s period %s", common.ErrBillingInProgress, contractID, period)
	}

	return func(ctx context.Context) error {
		return r.client.Eval(ctx, releaseScript, []string{key}, token).Err()
	}, nil
}

func (r *redisCacheService) GetCalculation(ctx context.Context, contractID uuid.UUID, period string) (*models.BillingCalculation, error) {
	data, err := r.client.Get(ctx, calculationKey(contractID, period)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var calc models.BillingCalculation
	if err := json.Unmarshal(data, &calc); err != nil {
		return nil, err
	}
	return &calc, nil
}

func (r *redisCacheService) SetCalculation(ctx context.Context, calc *models.BillingCalculation, ttl time.Duration) error {
	data, err := json.Marshal(calc)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, calculationKey(calc.ContractID, calc.BillingPeriod), data, ttl).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
