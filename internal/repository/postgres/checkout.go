package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/pkg/database"
	apperrors "github.com/emberglow/checkout-service/pkg/errors"
)

// CheckoutSessionRepository implements repository.CheckoutSessionRepository
// using PostgreSQL. The selected shipping method, applied coupon, and
// shipping address are embedded as JSON so the session row is a complete
// snapshot of the pricing state.
type CheckoutSessionRepository struct {
	db database.Querier
}

// NewCheckoutSessionRepository creates a new PostgreSQL-backed session repository.
func NewCheckoutSessionRepository(db database.Querier) *CheckoutSessionRepository {
	return &CheckoutSessionRepository{db: db}
}

const sessionColumns = `id, user_id, guest_email, status, currency,
		subtotal_amount, tax_rate_bps, shipping_method, applied_coupon, total_amount,
		payment_method, payment_proof_ref, shipping_address,
		order_id, expires_at, created_at, updated_at`

// Create inserts a new checkout session.
func (r *CheckoutSessionRepository) Create(ctx context.Context, session *domain.CheckoutSession) error {
	shippingJSON, couponJSON, addressJSON, err := marshalSessionParts(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO checkout_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = r.db.Exec(ctx, query,
		session.ID,
		nullableString(session.UserID),
		nullableString(session.GuestEmail),
		session.Status,
		session.Currency,
		session.SubtotalAmount,
		session.TaxRateBps,
		shippingJSON,
		couponJSON,
		session.TotalAmount,
		nullableString(session.PaymentMethod),
		nullableString(session.PaymentProofRef),
		addressJSON,
		nullableString(session.OrderID),
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert checkout session: %w", err)
	}

	return nil
}

// GetByID retrieves a checkout session by its ID.
func (r *CheckoutSessionRepository) GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM checkout_sessions WHERE id = $1`

	var (
		s            domain.CheckoutSession
		userID       *string
		guestEmail   *string
		shippingJSON []byte
		couponJSON   []byte
		payMethod    *string
		proofRef     *string
		addressJSON  []byte
		orderID      *string
	)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&userID,
		&guestEmail,
		&s.Status,
		&s.Currency,
		&s.SubtotalAmount,
		&s.TaxRateBps,
		&shippingJSON,
		&couponJSON,
		&s.TotalAmount,
		&payMethod,
		&proofRef,
		&addressJSON,
		&orderID,
		&s.ExpiresAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("checkout session", id)
		}
		return nil, fmt.Errorf("scan checkout session: %w", err)
	}

	s.UserID = deref(userID)
	s.GuestEmail = deref(guestEmail)
	s.PaymentMethod = deref(payMethod)
	s.PaymentProofRef = deref(proofRef)
	s.OrderID = deref(orderID)

	if len(shippingJSON) > 0 {
		if err := json.Unmarshal(shippingJSON, &s.ShippingMethod); err != nil {
			return nil, fmt.Errorf("unmarshal shipping method: %w", err)
		}
	}
	if len(couponJSON) > 0 {
		if err := json.Unmarshal(couponJSON, &s.AppliedCoupon); err != nil {
			return nil, fmt.Errorf("unmarshal applied coupon: %w", err)
		}
	}
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &s.ShippingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}

	return &s, nil
}

// Update modifies an existing checkout session.
func (r *CheckoutSessionRepository) Update(ctx context.Context, session *domain.CheckoutSession) error {
	shippingJSON, couponJSON, addressJSON, err := marshalSessionParts(session)
	if err != nil {
		return err
	}

	session.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE checkout_sessions
		SET status = $1, subtotal_amount = $2, tax_rate_bps = $3,
		    shipping_method = $4, applied_coupon = $5, total_amount = $6,
		    payment_method = $7, payment_proof_ref = $8, shipping_address = $9,
		    order_id = $10, updated_at = $11
		WHERE id = $12`

	ct, err := r.db.Exec(ctx, query,
		session.Status,
		session.SubtotalAmount,
		session.TaxRateBps,
		shippingJSON,
		couponJSON,
		session.TotalAmount,
		nullableString(session.PaymentMethod),
		nullableString(session.PaymentProofRef),
		addressJSON,
		nullableString(session.OrderID),
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update checkout session: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("checkout session", session.ID)
	}

	return nil
}

func marshalSessionParts(session *domain.CheckoutSession) (shipping, coupon, address []byte, err error) {
	if session.ShippingMethod != nil {
		if shipping, err = json.Marshal(session.ShippingMethod); err != nil {
			return nil, nil, nil, fmt.Errorf("marshal shipping method: %w", err)
		}
	}
	if session.AppliedCoupon != nil {
		if coupon, err = json.Marshal(session.AppliedCoupon); err != nil {
			return nil, nil, nil, fmt.Errorf("marshal applied coupon: %w", err)
		}
	}
	if session.ShippingAddress != nil {
		if address, err = json.Marshal(session.ShippingAddress); err != nil {
			return nil, nil, nil, fmt.Errorf("marshal shipping address: %w", err)
		}
	}
	return shipping, coupon, address, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
