package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/pkg/database"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.Querier
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.Querier) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order snapshot.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, session_id, user_id, guest_email, status, currency,
			subtotal_amount, tax_amount, shipping_amount, discount_amount, total_amount,
			shipping_method_id, shipping_method_name, coupon_id, coupon_code,
			payment_method, payment_proof_ref, shipping_address, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19
		)`

	_, err = r.db.Exec(ctx, query,
		order.ID,
		order.SessionID,
		nullableString(order.UserID),
		nullableString(order.GuestEmail),
		order.Status,
		order.Currency,
		order.SubtotalAmount,
		order.TaxAmount,
		order.ShippingAmount,
		order.DiscountAmount,
		order.TotalAmount,
		nullableString(order.ShippingMethodID),
		nullableString(order.ShippingMethodName),
		nullableString(order.CouponID),
		nullableString(order.CouponCode),
		order.PaymentMethod,
		nullableString(order.PaymentProofRef),
		addressJSON,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// CountByCouponAndRedeemer counts orders placed under the coupon for the
// given redeemer. Authenticated redeemers are counted by user id, guests by
// email; the two identities are never mixed in one count.
func (r *OrderRepository) CountByCouponAndRedeemer(ctx context.Context, couponID string, key domain.RedeemerKey) (int, error) {
	var (
		query string
		arg   string
	)
	if key.UserID != "" {
		query = `SELECT count(*) FROM orders WHERE coupon_id = $1 AND user_id = $2`
		arg = key.UserID
	} else {
		query = `SELECT count(*) FROM orders WHERE coupon_id = $1 AND guest_email = $2`
		arg = key.Email
	}

	var count int
	if err := r.db.QueryRow(ctx, query, couponID, arg).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders by coupon and redeemer: %w", err)
	}

	return count, nil
}
