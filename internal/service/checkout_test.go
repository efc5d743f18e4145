package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/internal/event"
	apperrors "github.com/emberglow/checkout-service/pkg/errors"
	pkgkafka "github.com/emberglow/checkout-service/pkg/kafka"
)

// --- Mock Repository ---

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Create(ctx context.Context, session *domain.CheckoutSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepository) GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

func (m *mockSessionRepository) Update(ctx context.Context, session *domain.CheckoutSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// --- Test Helpers ---

type checkoutFixture struct {
	sessions *mockSessionRepository
	orders   *mockOrderRepository
	coupons  *mockCouponRepository
	shipping *mockShippingMethodRepository
	svc      *CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	logger := newTestLogger()

	sessions := new(mockSessionRepository)
	orders := new(mockOrderRepository)
	coupons := new(mockCouponRepository)
	shipping := new(mockShippingMethodRepository)

	// Kafka producer that fails silently in tests (no real broker).
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)

	svc := NewCheckoutService(
		sessions,
		orders,
		NewShippingService(shipping, logger),
		NewCouponService(coupons, orders, logger),
		producer,
		logger,
		CheckoutConfig{TaxRateBps: 1600, SessionExpiry: 2 * time.Hour},
	)

	return &checkoutFixture{
		sessions: sessions,
		orders:   orders,
		coupons:  coupons,
		shipping: shipping,
		svc:      svc,
	}
}

func openSession() *domain.CheckoutSession {
	now := time.Now().UTC()
	s := &domain.CheckoutSession{
		ID:             "sess-1",
		UserID:         "a4c135c4-0001-4b6e-9f5a-000000000001",
		Status:         domain.StatusOpen,
		Currency:       "USD",
		SubtotalAmount: 10000,
		TaxRateBps:     1600,
		ExpiresAt:      now.Add(time.Hour),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.Recompute()
	return s
}

// --- Tests ---

func TestCreateSession_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.sessions.On("Create", ctx, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)

	session, err := f.svc.CreateSession(ctx, &CreateSessionInput{
		GuestEmail:     "guest@example.com",
		Currency:       "usd",
		SubtotalAmount: 10000,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, domain.StatusOpen, session.Status)
	assert.Equal(t, "USD", session.Currency)
	assert.Equal(t, int64(1600), session.TaxRateBps)
	assert.Equal(t, int64(11600), session.TotalAmount)
	assert.True(t, session.ExpiresAt.After(time.Now().UTC()))
}

func TestCreateSession_Validation(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		input *CreateSessionInput
	}{
		{"nil input", nil},
		{"no identity", &CreateSessionInput{Currency: "USD"}},
		{"bad currency", &CreateSessionInput{GuestEmail: "g@example.com", Currency: "US"}},
		{"negative subtotal", &CreateSessionInput{GuestEmail: "g@example.com", Currency: "USD", SubtotalAmount: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSession(ctx, tt.input)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSetSubtotal_Recomputes(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.sessions.On("GetByID", ctx, "sess-1").Return(openSession(), nil)
	f.sessions.On("Update", ctx, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)

	session, err := f.svc.SetSubtotal(ctx, "sess-1", 25000)

	require.NoError(t, err)
	assert.Equal(t, int64(25000), session.SubtotalAmount)
	assert.Equal(t, int64(29000), session.TotalAmount)
}

func TestSetTaxRate_Recomputes(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.sessions.On("GetByID", ctx, "sess-1").Return(openSession(), nil)
	f.sessions.On("Update", ctx, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)

	session, err := f.svc.SetTaxRate(ctx, "sess-1", 0)

	require.NoError(t, err)
	assert.Equal(t, int64(10000), session.TotalAmount)
}

func TestSelectShipping_Recomputes(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	method := &domain.ShippingMethod{ID: "sm-standard", Name: "Standard", PriceAmount: 500, Active: true}
	f.sessions.On("GetByID", ctx, "sess-1").Return(openSession(), nil)
	f.shipping.On("GetActive", ctx, "sm-standard").Return(method, nil)
	f.sessions.On("Update", ctx, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)

	session, err := f.svc.SelectShipping(ctx, "sess-1", "sm-standard")

	require.NoError(t, err)
	require.NotNil(t, session.ShippingMethod)
	assert.Equal(t, int64(12100), session.TotalAmount)
}

func TestSelectShipping_UnknownMethodLeavesSelection(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	existing := openSession()
	existing.ShippingMethod = &domain.ShippingMethod{ID: "sm-standard", PriceAmount: 500}
	existing.Recompute()

	f.sessions.On("GetByID", ctx, "sess-1").Return(existing, nil)
	f.shipping.On("GetActive", ctx, "sm-nope").Return(nil, apperrors.NotFound("shipping method", "sm-nope"))

	_, err := f.svc.SelectShipping(ctx, "sess-1", "sm-nope")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "sm-standard", existing.ShippingMethod.ID)
	f.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestApplyCoupon_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	coupon := &domain.Coupon{ID: "c-welcome", Code: "WELCOME", Kind: domain.CouponKindPercentage, Value: 1000, Active: true}
	f.sessions.On("GetByID", ctx, "sess-1").Return(openSession(), nil)
	f.coupons.On("GetByCode", ctx, "WELCOME").Return(coupon, nil)
	f.coupons.On("AppendRedemption", ctx, mock.Anything, 0).Return(nil)
	f.sessions.On("Update", ctx, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)

	session, err := f.svc.ApplyCoupon(ctx, "sess-1", "welcome")

	require.NoError(t, err)
	require.NotNil(t, session.AppliedCoupon)
	assert.Equal(t, int64(1000), session.AppliedCoupon.DiscountAmount)
	assert.Equal(t, int64(10600), session.TotalAmount)
}

func TestApplyCoupon_SecondCouponRejected(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	existing := openSession()
	existing.AppliedCoupon = &domain.AppliedCoupon{CouponID: "c-1", Code: "FIRST", DiscountAmount: 500}
	existing.Recompute()

	f.sessions.On("GetByID", ctx, "sess-1").Return(existing, nil)

	_, err := f.svc.ApplyCoupon(ctx, "sess-1", "SECOND")

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.coupons.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
}

func TestApplyCoupon_PipelineRejectionPassedThrough(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.sessions.On("GetByID", ctx, "sess-1").Return(openSession(), nil)
	f.coupons.On("GetByCode", ctx, "NOPE").Return(nil, apperrors.NotFound("coupon", "NOPE"))

	_, err := f.svc.ApplyCoupon(ctx, "sess-1", "nope")

	assert.ErrorIs(t, err, domain.ErrCouponNotFound("NOPE"))
	f.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestExpiredSessionIsMarkedAndRejected(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	expired := openSession()
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)

	f.sessions.On("GetByID", ctx, "sess-1").Return(expired, nil)
	f.sessions.On("Update", ctx, mock.MatchedBy(func(s *domain.CheckoutSession) bool {
		return s.Status == domain.StatusExpired
	})).Return(nil)

	_, err := f.svc.SetSubtotal(ctx, "sess-1", 5000)

	assert.ErrorIs(t, err, apperrors.ErrGone)
	f.sessions.AssertExpectations(t)
}

func TestSubmittedSessionRejectsMutation(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	submitted := openSession()
	submitted.Status = domain.StatusSubmitted

	f.sessions.On("GetByID", ctx, "sess-1").Return(submitted, nil)

	_, err := f.svc.SetSubtotal(ctx, "sess-1", 5000)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSetPaymentMethod(t *testing.T) {
	t.Run("bank transfer carries proof ref", func(t *testing.T) {
		f := newCheckoutFixture()
		ctx := context.Background()

		f.sessions.On("GetByID", ctx, "sess-1").Return(openSession(), nil)
		f.sessions.On("Update", ctx, mock.Anything).Return(nil)

		session, err := f.svc.SetPaymentMethod(ctx, "sess-1", domain.PaymentMethodBankTransfer, "wire-123")

		require.NoError(t, err)
		assert.Equal(t, "wire-123", session.PaymentProofRef)
	})

	t.Run("unknown method rejected", func(t *testing.T) {
		f := newCheckoutFixture()

		_, err := f.svc.SetPaymentMethod(context.Background(), "sess-1", "crypto", "")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("proof ref rejected for card", func(t *testing.T) {
		f := newCheckoutFixture()

		_, err := f.svc.SetPaymentMethod(context.Background(), "sess-1", domain.PaymentMethodCard, "wire-123")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func submittableSession() *domain.CheckoutSession {
	s := openSession()
	s.ShippingMethod = &domain.ShippingMethod{ID: "sm-standard", Name: "Standard", PriceAmount: 500}
	s.PaymentMethod = domain.PaymentMethodCard
	s.ShippingAddress = &domain.Address{
		FullName:    "Ada Example",
		AddressLine: "1 Wax Way",
		City:        "Springfield",
		PostalCode:  "12345",
		Country:     "US",
	}
	s.AppliedCoupon = &domain.AppliedCoupon{CouponID: "c-welcome", Code: "WELCOME", DiscountAmount: 1000}
	s.Recompute()
	return s
}

func TestSubmit_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	session := submittableSession()
	f.sessions.On("GetByID", ctx, "sess-1").Return(session, nil)
	f.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	f.sessions.On("Update", ctx, mock.MatchedBy(func(s *domain.CheckoutSession) bool {
		return s.Status == domain.StatusSubmitted && s.OrderID != ""
	})).Return(nil)

	order, err := f.svc.Submit(ctx, "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "sess-1", order.SessionID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(10000), order.SubtotalAmount)
	assert.Equal(t, int64(1600), order.TaxAmount)
	assert.Equal(t, int64(500), order.ShippingAmount)
	assert.Equal(t, int64(1000), order.DiscountAmount)
	assert.Equal(t, int64(11100), order.TotalAmount)
	assert.Equal(t, "WELCOME", order.CouponCode)
	f.sessions.AssertExpectations(t)
}

func TestSubmit_MissingPrerequisites(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CheckoutSession)
	}{
		{"no shipping method", func(s *domain.CheckoutSession) { s.ShippingMethod = nil }},
		{"no payment method", func(s *domain.CheckoutSession) { s.PaymentMethod = "" }},
		{"no shipping address", func(s *domain.CheckoutSession) { s.ShippingAddress = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture()
			ctx := context.Background()

			session := submittableSession()
			tt.mutate(session)
			session.Recompute()
			f.sessions.On("GetByID", ctx, "sess-1").Return(session, nil)

			_, err := f.svc.Submit(ctx, "sess-1")

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}
