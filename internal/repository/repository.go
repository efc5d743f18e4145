package repository

import (
	"context"
	"errors"

	"github.com/emberglow/checkout-service/internal/domain"
)

// ErrRedemptionCapacity is returned by AppendRedemption when the guarded
// insert finds the coupon's global capacity already spent. It closes the
// cross-session check-then-append window at the store.
var ErrRedemptionCapacity = errors.New("coupon redemption capacity exhausted")

// CouponRepository defines read access to coupons and append access to the
// redemption log. The checkout engine never creates or edits coupons.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its normalized (upper-cased) code.
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)

	// CountRedemptions returns the number of redemption-log rows for the
	// coupon, read at call time rather than from a cached counter.
	CountRedemptions(ctx context.Context, couponID string) (int, error)

	// AppendRedemption inserts one redemption-log row. When maxGlobalUses is
	// positive the insert is guarded by the current redemption count and
	// ErrRedemptionCapacity is returned instead of exceeding the cap.
	AppendRedemption(ctx context.Context, rec *domain.RedemptionRecord, maxGlobalUses int) error
}

// ShippingMethodRepository defines read access to the shipping catalog.
type ShippingMethodRepository interface {
	// ListActive returns all active shipping methods ordered by price ascending.
	ListActive(ctx context.Context) ([]domain.ShippingMethod, error)

	// GetActive retrieves an active shipping method by id.
	GetActive(ctx context.Context, id string) (*domain.ShippingMethod, error)
}

// OrderRepository defines persistence for submitted orders.
type OrderRepository interface {
	// Create inserts a new order snapshot.
	Create(ctx context.Context, order *domain.Order) error

	// CountByCouponAndRedeemer returns the number of orders placed under the
	// given coupon for the redeemer. This is the per-redeemer cap's counting
	// basis and is distinct from the redemption log.
	CountByCouponAndRedeemer(ctx context.Context, couponID string, key domain.RedeemerKey) (int, error)
}

// CheckoutSessionRepository defines persistence for checkout sessions.
type CheckoutSessionRepository interface {
	// Create inserts a new checkout session.
	Create(ctx context.Context, session *domain.CheckoutSession) error

	// GetByID retrieves a checkout session by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error)

	// Update modifies an existing checkout session.
	Update(ctx context.Context, session *domain.CheckoutSession) error
}
