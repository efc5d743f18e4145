package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/internal/repository"
)

const couponKeyPrefix = "coupon:code:"

// CouponRepository is a read-through cache in front of another coupon
// repository. Coupon lookups by code are served from Redis when possible;
// redemption counts and appends always go to the store, since a cached
// count would hide concurrent redemptions. Cached entries carry only the
// coupon definition, never usage data, so appends leave the cache alone.
type CouponRepository struct {
	inner  repository.CouponRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCouponRepository wraps the given repository with a Redis cache.
func NewCouponRepository(inner repository.CouponRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CouponRepository {
	return &CouponRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetByCode serves the coupon from cache when present, falling back to the
// inner repository on a miss or any cache error. Cache failures are logged
// and never surfaced; Redis being down must not block checkouts.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	key := couponKeyPrefix + code

	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var c domain.Coupon
		if err := json.Unmarshal(data, &c); err == nil {
			return &c, nil
		}
		// Corrupt entry; drop it and fall through to the store.
		r.client.Del(ctx, key)
	} else if err != redis.Nil {
		r.logger.WarnContext(ctx, "coupon cache read failed",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	}

	coupon, err := r.inner.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(coupon); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.WarnContext(ctx, "coupon cache write failed",
				slog.String("code", code),
				slog.String("error", err.Error()),
			)
		}
	}

	return coupon, nil
}

// CountRedemptions always reads from the store.
func (r *CouponRepository) CountRedemptions(ctx context.Context, couponID string) (int, error) {
	return r.inner.CountRedemptions(ctx, couponID)
}

// AppendRedemption writes through to the store.
func (r *CouponRepository) AppendRedemption(ctx context.Context, rec *domain.RedemptionRecord, maxGlobalUses int) error {
	return r.inner.AppendRedemption(ctx, rec, maxGlobalUses)
}
