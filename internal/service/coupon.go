package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/internal/repository"
	apperrors "github.com/emberglow/checkout-service/pkg/errors"
)

var couponRedemptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "coupon_redemptions_total",
		Help: "Coupon redemption attempts by outcome code",
	},
	[]string{"outcome"},
)

// CouponService decides whether a coupon code may be redeemed and, if so,
// spends one unit of its capacity by appending to the redemption log.
type CouponService struct {
	coupons repository.CouponRepository
	orders  repository.OrderRepository
	logger  *slog.Logger

	// now is swappable so the validity window checks are testable.
	now func() time.Time
}

// NewCouponService creates a new coupon service.
func NewCouponService(coupons repository.CouponRepository, orders repository.OrderRepository, logger *slog.Logger) *CouponService {
	return &CouponService{
		coupons: coupons,
		orders:  orders,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Redeem runs the validation pipeline for the given code and, on success,
// records one redemption and returns the applied coupon. The checks run in a
// fixed order and the first failure wins, so the caller always gets the most
// specific rejection. Each successful call appends exactly one redemption
// row; callers that track an already-applied coupon must gate re-invocation
// themselves.
//
// subtotalBasis is the amount a percentage discount is computed against, in
// minor currency units.
func (s *CouponService) Redeem(ctx context.Context, code string, subtotalBasis int64, key domain.RedeemerKey) (*domain.AppliedCoupon, error) {
	applied, err := s.redeem(ctx, code, subtotalBasis, key)
	couponRedemptionsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	return applied, err
}

func (s *CouponService) redeem(ctx context.Context, code string, subtotalBasis int64, key domain.RedeemerKey) (*domain.AppliedCoupon, error) {
	normalized := domain.NormalizeCode(code)
	if normalized == "" {
		return nil, domain.ErrEmptyCode()
	}

	coupon, err := s.coupons.GetByCode(ctx, normalized)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrCouponNotFound(normalized)
		}
		s.logger.ErrorContext(ctx, "coupon lookup failed",
			slog.String("code", normalized),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrCouponPersistence()
	}

	if !coupon.Active {
		return nil, domain.ErrCouponInactive()
	}

	now := s.now()
	if !coupon.Started(now) {
		return nil, domain.ErrCouponNotYetStarted()
	}
	if coupon.Ended(now) {
		return nil, domain.ErrCouponExpired()
	}

	if coupon.MaxGlobalUses > 0 {
		count, err := s.coupons.CountRedemptions(ctx, coupon.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "redemption count failed",
				slog.String("coupon_id", coupon.ID),
				slog.String("error", err.Error()),
			)
			return nil, domain.ErrCouponPersistence()
		}
		if count >= coupon.MaxGlobalUses {
			return nil, domain.ErrGlobalLimitReached()
		}
	}

	if coupon.MaxUsesPerRedeemer > 0 {
		if key.IsZero() {
			return nil, domain.ErrRedeemerKeyRequired()
		}
		// The per-redeemer cap counts completed orders placed under the
		// coupon, not redemption-log rows. The two caps intentionally use
		// different counting bases.
		count, err := s.orders.CountByCouponAndRedeemer(ctx, coupon.ID, key)
		if err != nil {
			s.logger.ErrorContext(ctx, "per-redeemer order count failed",
				slog.String("coupon_id", coupon.ID),
				slog.String("error", err.Error()),
			)
			return nil, domain.ErrCouponPersistence()
		}
		if count >= coupon.MaxUsesPerRedeemer {
			return nil, domain.ErrPerRedeemerLimitReached()
		}
	}

	discount := coupon.DiscountAmount(subtotalBasis)

	// Spending the capacity happens last; if this append does not commit,
	// the whole redemption fails and no discount is reported.
	rec := &domain.RedemptionRecord{
		ID:        uuid.New().String(),
		CouponID:  coupon.ID,
		UserID:    key.UserID,
		Email:     key.Email,
		CreatedAt: now,
	}
	if err := s.coupons.AppendRedemption(ctx, rec, coupon.MaxGlobalUses); err != nil {
		if errors.Is(err, repository.ErrRedemptionCapacity) {
			// A concurrent session spent the last unit between the count
			// read and the append.
			return nil, domain.ErrGlobalLimitReached()
		}
		s.logger.ErrorContext(ctx, "redemption append failed",
			slog.String("coupon_id", coupon.ID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrCouponPersistence()
	}

	s.logger.InfoContext(ctx, "coupon redeemed",
		slog.String("coupon_id", coupon.ID),
		slog.String("code", coupon.Code),
		slog.Int64("discount_amount", discount),
	)

	return &domain.AppliedCoupon{
		CouponID:       coupon.ID,
		Code:           coupon.Code,
		DiscountAmount: discount,
	}, nil
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var ce *domain.CouponError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return "error"
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
