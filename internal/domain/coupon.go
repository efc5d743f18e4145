package domain

import (
	"strings"
	"time"
)

// Coupon kind constants.
const (
	CouponKindPercentage = "percentage"
	CouponKindFixed      = "fixed"
)

// Coupon represents a discount offer. Coupons are created and edited by
// the admin surface; the checkout engine only reads them.
type Coupon struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Kind string `json:"kind"`
	// Value is in basis points for percentage coupons (1000 = 10%) and in
	// minor currency units for fixed coupons.
	Value              int64      `json:"value"`
	Active             bool       `json:"active"`
	ValidFrom          *time.Time `json:"valid_from,omitempty"`
	ValidUntil         *time.Time `json:"valid_until,omitempty"`
	MaxGlobalUses      int        `json:"max_global_uses"`
	MaxUsesPerRedeemer int        `json:"max_uses_per_redeemer"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NormalizeCode canonicalizes a user-entered coupon code: trimmed and
// upper-cased, matching the stored form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Started reports whether the coupon's start instant has been reached at t.
// An unset ValidFrom means the coupon has no start bound.
func (c *Coupon) Started(t time.Time) bool {
	return c.ValidFrom == nil || !t.Before(*c.ValidFrom)
}

// Ended reports whether the coupon's end instant has passed at t. Both
// window ends are inclusive: t equal to ValidUntil is still usable.
func (c *Coupon) Ended(t time.Time) bool {
	return c.ValidUntil != nil && t.After(*c.ValidUntil)
}

// UsableAt reports whether the coupon is redeemable at instant t: active,
// started, and not ended.
func (c *Coupon) UsableAt(t time.Time) bool {
	return c.Active && c.Started(t) && !c.Ended(t)
}

// DiscountAmount computes the discount for the given subtotal basis.
// Percentage coupons apply Value basis points of the basis; fixed coupons
// return Value regardless of the basis, so a fixed discount may legally
// exceed the subtotal. The result is never negative.
func (c *Coupon) DiscountAmount(subtotalBasis int64) int64 {
	var amount int64
	switch c.Kind {
	case CouponKindPercentage:
		amount = subtotalBasis * c.Value / 10000
	case CouponKindFixed:
		amount = c.Value
	}
	if amount < 0 {
		return 0
	}
	return amount
}

// ValidKinds returns the set of valid coupon kinds.
func ValidKinds() []string {
	return []string{CouponKindPercentage, CouponKindFixed}
}

// IsValidKind checks whether the given kind string is a valid coupon kind.
func IsValidKind(kind string) bool {
	for _, k := range ValidKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// RedeemerKey identifies who is redeeming a coupon: the authenticated user
// id, or the guest email for anonymous checkouts.
type RedeemerKey struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

// IsZero reports whether neither identity is present.
func (k RedeemerKey) IsZero() bool {
	return k.UserID == "" && k.Email == ""
}

// RedemptionRecord is one row of the append-only redemption log. Created
// exactly once per successful redemption; never mutated or deleted by the
// checkout engine.
type RedemptionRecord struct {
	ID        string    `json:"id"`
	CouponID  string    `json:"coupon_id"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AppliedCoupon is the session-held result of a successful redemption.
type AppliedCoupon struct {
	CouponID       string `json:"coupon_id"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
}
