package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/internal/event"
	"github.com/emberglow/checkout-service/internal/repository"
	apperrors "github.com/emberglow/checkout-service/pkg/errors"
)

// CheckoutConfig holds the pricing knobs applied to every new session.
type CheckoutConfig struct {
	// TaxRateBps is the storefront's flat tax rate in basis points.
	TaxRateBps int64
	// SessionExpiry is how long a checkout session remains usable.
	SessionExpiry time.Duration
}

// CheckoutService owns checkout sessions: it applies every pricing mutation
// through the session's recompute step and is the single place where a
// session turns into an order.
type CheckoutService struct {
	sessions repository.CheckoutSessionRepository
	orders   repository.OrderRepository
	shipping *ShippingService
	coupons  *CouponService
	producer *event.Producer
	logger   *slog.Logger
	cfg      CheckoutConfig
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	sessions repository.CheckoutSessionRepository,
	orders repository.OrderRepository,
	shipping *ShippingService,
	coupons *CouponService,
	producer *event.Producer,
	logger *slog.Logger,
	cfg CheckoutConfig,
) *CheckoutService {
	return &CheckoutService{
		sessions: sessions,
		orders:   orders,
		shipping: shipping,
		coupons:  coupons,
		producer: producer,
		logger:   logger,
		cfg:      cfg,
	}
}

// CreateSessionInput holds the parameters for opening a checkout session.
type CreateSessionInput struct {
	UserID         string
	GuestEmail     string
	Currency       string
	SubtotalAmount int64
}

// CreateSession opens a new checkout session for a user or a guest. The tax
// rate is fixed at creation from the storefront configuration.
func (s *CheckoutService) CreateSession(ctx context.Context, input *CreateSessionInput) (*domain.CheckoutSession, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("checkout input is required")
	}
	if input.UserID == "" && input.GuestEmail == "" {
		return nil, apperrors.InvalidInput("a user id or a guest email is required")
	}
	if len(input.Currency) != 3 {
		return nil, apperrors.InvalidInput("currency must be a 3-letter ISO code")
	}
	if input.SubtotalAmount < 0 {
		return nil, apperrors.InvalidInput("subtotal must not be negative")
	}

	now := time.Now().UTC()
	session := &domain.CheckoutSession{
		ID:             uuid.New().String(),
		UserID:         input.UserID,
		GuestEmail:     input.GuestEmail,
		Status:         domain.StatusOpen,
		Currency:       strings.ToUpper(input.Currency),
		SubtotalAmount: input.SubtotalAmount,
		TaxRateBps:     s.cfg.TaxRateBps,
		ExpiresAt:      now.Add(s.cfg.SessionExpiry),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	session.Recompute()

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout session opened",
		slog.String("session_id", session.ID),
		slog.Int64("subtotal_amount", session.SubtotalAmount),
		slog.Int64("total_amount", session.TotalAmount),
	)

	return session, nil
}

// GetSession retrieves a checkout session by its ID.
func (s *CheckoutService) GetSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	return session, nil
}

// SetSubtotal updates the cart subtotal and recomputes the total.
func (s *CheckoutService) SetSubtotal(ctx context.Context, sessionID string, amount int64) (*domain.CheckoutSession, error) {
	if amount < 0 {
		return nil, apperrors.InvalidInput("subtotal must not be negative")
	}

	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.SubtotalAmount = amount
	session.Recompute()

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update checkout subtotal: %w", err)
	}

	return session, nil
}

// SetTaxRate updates the session's tax rate (basis points) and recomputes
// the total.
func (s *CheckoutService) SetTaxRate(ctx context.Context, sessionID string, rateBps int64) (*domain.CheckoutSession, error) {
	if rateBps < 0 {
		return nil, apperrors.InvalidInput("tax rate must not be negative")
	}

	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.TaxRateBps = rateBps
	session.Recompute()

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update checkout tax rate: %w", err)
	}

	return session, nil
}

// SelectShipping resolves the method id against the catalog and, when found,
// attaches it to the session and recomputes the total. An unknown id leaves
// the previous selection untouched.
func (s *CheckoutService) SelectShipping(ctx context.Context, sessionID, methodID string) (*domain.CheckoutSession, error) {
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	method, err := s.shipping.Select(ctx, methodID)
	if err != nil {
		return nil, err
	}

	session.ShippingMethod = method
	session.Recompute()

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update checkout shipping selection: %w", err)
	}

	s.logger.InfoContext(ctx, "shipping method selected",
		slog.String("session_id", sessionID),
		slog.String("method_id", method.ID),
		slog.Int64("price_amount", method.PriceAmount),
	)

	return session, nil
}

// ApplyCoupon redeems the code for this session and attaches the discount.
// A session may carry at most one coupon; a second apply is rejected here
// before the validator runs, so no second redemption is recorded.
func (s *CheckoutService) ApplyCoupon(ctx context.Context, sessionID, code string) (*domain.CheckoutSession, error) {
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.AppliedCoupon != nil {
		return nil, apperrors.Conflict("a coupon has already been applied to this checkout")
	}

	applied, err := s.coupons.Redeem(ctx, code, session.SubtotalAmount, session.RedeemerKey())
	if err != nil {
		return nil, err
	}

	session.AppliedCoupon = applied
	session.Recompute()

	if err := s.sessions.Update(ctx, session); err != nil {
		// The redemption row is already committed; surface the failure
		// rather than pretend the discount was attached.
		s.logger.ErrorContext(ctx, "failed to persist applied coupon",
			slog.String("session_id", sessionID),
			slog.String("coupon_id", applied.CouponID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("update checkout with coupon: %w", err)
	}

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishCouponRedeemed(ctx, session, applied); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish coupon_redeemed event",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	return session, nil
}

// SetShippingAddress sets the delivery address on the session.
func (s *CheckoutService) SetShippingAddress(ctx context.Context, sessionID string, address *domain.Address) (*domain.CheckoutSession, error) {
	if address == nil {
		return nil, apperrors.InvalidInput("shipping address is required")
	}
	if address.FullName == "" {
		return nil, apperrors.InvalidInput("full_name is required")
	}
	if address.AddressLine == "" {
		return nil, apperrors.InvalidInput("address_line is required")
	}
	if address.City == "" {
		return nil, apperrors.InvalidInput("city is required")
	}
	if address.PostalCode == "" {
		return nil, apperrors.InvalidInput("postal_code is required")
	}
	if address.Country == "" {
		return nil, apperrors.InvalidInput("country is required")
	}

	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.ShippingAddress = address

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update checkout shipping address: %w", err)
	}

	return session, nil
}

// SetPaymentMethod records the payment method choice. For bank transfers the
// customer may attach a proof-of-payment reference; other methods carry none.
func (s *CheckoutService) SetPaymentMethod(ctx context.Context, sessionID, method, proofRef string) (*domain.CheckoutSession, error) {
	if !domain.IsValidPaymentMethod(method) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid payment method %q, must be one of: %s",
			method, strings.Join(domain.ValidPaymentMethods(), ", ")))
	}
	if proofRef != "" && method != domain.PaymentMethodBankTransfer {
		return nil, apperrors.InvalidInput("payment proof reference is only accepted for bank transfers")
	}

	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.PaymentMethod = method
	session.PaymentProofRef = proofRef

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update checkout payment method: %w", err)
	}

	s.logger.InfoContext(ctx, "payment method recorded",
		slog.String("session_id", sessionID),
		slog.String("payment_method", method),
	)

	return session, nil
}

// Submit freezes the session into an immutable order. This is the only
// boundary where order persistence is invoked; the snapshot carries every
// pricing component so the order is reconstructible without the session.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string) (*domain.Order, error) {
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.ShippingMethod == nil {
		return nil, apperrors.InvalidInput("a shipping method must be selected before submitting")
	}
	if session.PaymentMethod == "" {
		return nil, apperrors.InvalidInput("a payment method must be chosen before submitting")
	}
	if session.ShippingAddress == nil {
		return nil, apperrors.InvalidInput("a shipping address must be set before submitting")
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:             uuid.New().String(),
		SessionID:      session.ID,
		UserID:         session.UserID,
		GuestEmail:     session.GuestEmail,
		Status:         domain.OrderStatusPending,
		Currency:       session.Currency,
		SubtotalAmount: session.SubtotalAmount,
		TaxAmount:      domain.TaxAmount(session.SubtotalAmount, session.TaxRateBps),
		ShippingAmount: session.ShippingAmount(),
		DiscountAmount: session.DiscountAmount(),
		TotalAmount:    session.TotalAmount,

		ShippingMethodID:   session.ShippingMethod.ID,
		ShippingMethodName: session.ShippingMethod.Name,

		PaymentMethod:   session.PaymentMethod,
		PaymentProofRef: session.PaymentProofRef,
		ShippingAddress: session.ShippingAddress,

		CreatedAt: now,
	}
	if session.AppliedCoupon != nil {
		order.CouponID = session.AppliedCoupon.CouponID
		order.CouponCode = session.AppliedCoupon.Code
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	session.Status = domain.StatusSubmitted
	session.OrderID = order.ID

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update checkout after submit: %w", err)
	}

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order_created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout submitted",
		slog.String("session_id", session.ID),
		slog.String("order_id", order.ID),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// openSession loads a session and verifies it can still be mutated. Expired
// sessions are marked as such and rejected.
func (s *CheckoutService) openSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	if session.Status == domain.StatusOpen && session.IsExpired() {
		session.Status = domain.StatusExpired
		if err := s.sessions.Update(ctx, session); err != nil {
			s.logger.ErrorContext(ctx, "failed to mark checkout session expired",
				slog.String("session_id", session.ID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("update expired checkout session: %w", err)
		}
		return nil, apperrors.Gone("checkout session has expired")
	}

	if session.IsTerminal() {
		return nil, apperrors.InvalidInput("checkout session is no longer open")
	}

	return session, nil
}
