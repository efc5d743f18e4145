package domain

import "fmt"

// Coupon rejection codes. Every failed redemption maps to exactly one of
// these; the validation pipeline short-circuits on the first failing check.
const (
	CouponErrEmptyCode               = "EMPTY_CODE"
	CouponErrNotFound                = "COUPON_NOT_FOUND"
	CouponErrInactive                = "COUPON_INACTIVE"
	CouponErrNotYetStarted           = "COUPON_NOT_YET_STARTED"
	CouponErrExpired                 = "COUPON_EXPIRED"
	CouponErrGlobalLimitReached      = "COUPON_GLOBAL_LIMIT_REACHED"
	CouponErrRedeemerKeyRequired     = "REDEEMER_KEY_REQUIRED"
	CouponErrPerRedeemerLimitReached = "COUPON_PER_REDEEMER_LIMIT_REACHED"
	CouponErrPersistenceFailure      = "PERSISTENCE_FAILURE"
)

// CouponError is a coupon rejection. All rejections are recoverable user
// conditions surfaced as a message; none are fatal to the process.
type CouponError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is makes errors.Is match two CouponErrors by code.
func (e *CouponError) Is(target error) bool {
	t, ok := target.(*CouponError)
	return ok && t.Code == e.Code
}

func newCouponError(code, message string) *CouponError {
	return &CouponError{Code: code, Message: message}
}

// ErrEmptyCode rejects a blank coupon code.
func ErrEmptyCode() *CouponError {
	return newCouponError(CouponErrEmptyCode, "coupon code is required")
}

// ErrCouponNotFound rejects an unknown coupon code.
func ErrCouponNotFound(code string) *CouponError {
	return newCouponError(CouponErrNotFound, fmt.Sprintf("coupon %q not found", code))
}

// ErrCouponInactive rejects a coupon whose active flag is off.
func ErrCouponInactive() *CouponError {
	return newCouponError(CouponErrInactive, "coupon is not active")
}

// ErrCouponNotYetStarted rejects a coupon before its validity window opens.
func ErrCouponNotYetStarted() *CouponError {
	return newCouponError(CouponErrNotYetStarted, "coupon is not valid yet")
}

// ErrCouponExpired rejects a coupon after its validity window closes.
func ErrCouponExpired() *CouponError {
	return newCouponError(CouponErrExpired, "coupon has expired")
}

// ErrGlobalLimitReached rejects a coupon whose total redemption capacity
// is exhausted.
func ErrGlobalLimitReached() *CouponError {
	return newCouponError(CouponErrGlobalLimitReached, "coupon usage limit reached")
}

// ErrRedeemerKeyRequired rejects a per-redeemer-capped coupon when neither
// a user id nor a guest email is available.
func ErrRedeemerKeyRequired() *CouponError {
	return newCouponError(CouponErrRedeemerKeyRequired, "sign in or provide an email to use this coupon")
}

// ErrPerRedeemerLimitReached rejects a coupon the redeemer has already used
// up to its per-redeemer cap.
func ErrPerRedeemerLimitReached() *CouponError {
	return newCouponError(CouponErrPerRedeemerLimitReached, "you have already used this coupon the maximum number of times")
}

// ErrCouponPersistence reports a store failure during validation. When the
// redemption append does not durably commit, the whole redemption fails and
// the discount is withheld.
func ErrCouponPersistence() *CouponError {
	return newCouponError(CouponErrPersistenceFailure, "could not apply the coupon, please try again")
}
