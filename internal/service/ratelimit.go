package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"nudduck.com/nudduck/pkg/apperror"
)

// Per-user cooldowns backed by redis SET NX. A nil client disables limiting.

func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := rateLimitKey(userID, action)

	wasSet, err := rdb.SetNX(ctx, key, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, rateLimitKey(userID, action)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, rateLimitKey(userID, action)).Result()
	return err
}

func rateLimitKey(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// acquireCooldowns takes the global cooldown plus the per-action one, rolling
// the global lock back when the second acquisition fails.
func acquireCooldowns(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string, limits RateLimits, actionLimit time.Duration) error {
	allowed, err := CheckAndSetRateLimit(ctx, rdb, userID, "global", limits.Global)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		return apperror.ErrRateLimitExceeded
	}

	allowed, err = CheckAndSetRateLimit(ctx, rdb, userID, action, actionLimit)
	if err != nil {
		_ = ClearRateLimit(ctx, rdb, userID, "global")
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		_ = ClearRateLimit(ctx, rdb, userID, "global")
		return apperror.ErrRateLimitExceeded
	}

	return nil
}

// releaseCooldowns undoes acquireCooldowns after a failed create.
func releaseCooldowns(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) {
	_ = ClearRateLimit(ctx, rdb, userID, "global")
	_ = ClearRateLimit(ctx, rdb, userID, action)
}
