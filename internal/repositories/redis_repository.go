package repository

import (
	"context"
	"fmt"
	"time"

	"shoplite/internal/config"

	"github.com/redis/go-redis/v9"
)

type RedisRepository interface {
	CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error)
}

type RedisRepo struct {
	client *redis.Client
	rate   config.RateConfig
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConnect.Addr,
		Username: cfg.RedisConnect.Username,
		Password: cfg.RedisConnect.Password,
		DB:       cfg.RedisConnect.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedisRepo(client *redis.Client, rate config.RateConfig) *RedisRepo {
	return &RedisRepo{client: client, rate: rate}
}

// CheckLoginRateLimit applies a sliding-window limit on login attempts per
// username. Returns whether the attempt is allowed, attempts left, and the
// seconds to wait when blocked.
func (r *RedisRepo) CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error) {

	key := fmt.Sprintf("login_attempts:%s", username)

	now := time.Now().Unix()
	windowStart := now - int64(r.rate.WindowSize.Seconds())

	pipe := r.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, r.rate.WindowSize)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, fmt.Errorf("rate limit pipeline: %w", err)
	}

	attempts := count.Val()

	if attempts > r.rate.MaxAttempts {
		return false, 0, int(r.rate.WindowSize.Seconds()), nil
	}

	return true, int(r.rate.MaxAttempts - attempts), 0, nil
}
