package domain

import (
	"time"
)

// Checkout session status constants.
const (
	StatusOpen      = "open"
	StatusSubmitted = "submitted"
	StatusExpired   = "expired"
)

// Payment method constants. The engine only records the choice; charging is
// out of scope. Bank transfers additionally carry a proof-of-payment
// reference supplied by the customer.
const (
	PaymentMethodCard           = "card"
	PaymentMethodBankTransfer   = "bank_transfer"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
)

// CheckoutSession is the pricing state of one checkout, owned exclusively by
// a single customer session. TotalAmount is derived; no code path writes it
// except Recompute.
type CheckoutSession struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id,omitempty"`
	GuestEmail string `json:"guest_email,omitempty"`
	Status     string `json:"status"`
	Currency   string `json:"currency"`

	// SubtotalAmount is the cart subtotal in minor currency units.
	SubtotalAmount int64 `json:"subtotal_amount"`
	// TaxRateBps is the flat tax rate in basis points (1600 = 16%).
	TaxRateBps int64 `json:"tax_rate_bps"`

	ShippingMethod *ShippingMethod `json:"shipping_method,omitempty"`
	AppliedCoupon  *AppliedCoupon  `json:"applied_coupon,omitempty"`

	TotalAmount int64 `json:"total_amount"`

	PaymentMethod   string   `json:"payment_method,omitempty"`
	PaymentProofRef string   `json:"payment_proof_ref,omitempty"`
	ShippingAddress *Address `json:"shipping_address,omitempty"`

	OrderID   string    `json:"order_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address is a shipping destination.
type Address struct {
	FullName    string `json:"full_name"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone,omitempty"`
}

// RedeemerKey returns the identity used for per-redeemer coupon caps: the
// user id when authenticated, otherwise the guest email.
func (s *CheckoutSession) RedeemerKey() RedeemerKey {
	if s.UserID != "" {
		return RedeemerKey{UserID: s.UserID}
	}
	return RedeemerKey{Email: s.GuestEmail}
}

// ShippingAmount returns the cost of the selected shipping method, or zero
// when none is selected yet.
func (s *CheckoutSession) ShippingAmount() int64 {
	if s.ShippingMethod == nil {
		return 0
	}
	return s.ShippingMethod.PriceAmount
}

// DiscountAmount returns the applied coupon's discount, or zero when no
// coupon is applied.
func (s *CheckoutSession) DiscountAmount() int64 {
	if s.AppliedCoupon == nil {
		return 0
	}
	return s.AppliedCoupon.DiscountAmount
}

// Recompute derives TotalAmount from the other pricing fields. Every setter
// goes through here; the total is never written directly.
func (s *CheckoutSession) Recompute() {
	s.TotalAmount = Total(s.SubtotalAmount, s.TaxRateBps, s.ShippingAmount(), s.DiscountAmount())
}

// IsExpired reports whether the session has passed its expiry time.
func (s *CheckoutSession) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// IsTerminal reports whether the session can no longer be mutated.
func (s *CheckoutSession) IsTerminal() bool {
	return s.Status == StatusSubmitted || s.Status == StatusExpired
}

// ValidStatuses returns the set of valid session statuses.
func ValidStatuses() []string {
	return []string{StatusOpen, StatusSubmitted, StatusExpired}
}

// IsValidStatus checks whether the given status string is a valid session status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ValidPaymentMethods returns the payment method choices the storefront records.
func ValidPaymentMethods() []string {
	return []string{PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCashOnDelivery}
}

// IsValidPaymentMethod checks whether the given method is recordable.
func IsValidPaymentMethod(method string) bool {
	for _, m := range ValidPaymentMethods() {
		if m == method {
			return true
		}
	}
	return false
}
