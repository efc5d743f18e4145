package domain

import "time"

// Order status constants.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// Order is the immutable snapshot created when a checkout session is
// submitted. Amounts are frozen at submission time; later coupon or catalog
// changes do not affect it.
type Order struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id,omitempty"`
	GuestEmail string `json:"guest_email,omitempty"`
	Status     string `json:"status"`
	Currency   string `json:"currency"`

	SubtotalAmount int64 `json:"subtotal_amount"`
	TaxAmount      int64 `json:"tax_amount"`
	ShippingAmount int64 `json:"shipping_amount"`
	DiscountAmount int64 `json:"discount_amount"`
	TotalAmount    int64 `json:"total_amount"`

	ShippingMethodID   string `json:"shipping_method_id,omitempty"`
	ShippingMethodName string `json:"shipping_method_name,omitempty"`

	CouponID   string `json:"coupon_id,omitempty"`
	CouponCode string `json:"coupon_code,omitempty"`

	PaymentMethod   string   `json:"payment_method"`
	PaymentProofRef string   `json:"payment_proof_ref,omitempty"`
	ShippingAddress *Address `json:"shipping_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
