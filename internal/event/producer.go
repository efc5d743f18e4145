package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emberglow/checkout-service/internal/domain"
	pkgkafka "github.com/emberglow/checkout-service/pkg/kafka"
)

// Kafka topic constants for checkout domain events.
const (
	TopicCouponRedeemed = "storefront.checkout.coupon_redeemed"
	TopicOrderCreated   = "storefront.checkout.order_created"
)

// Aggregate type constant.
const AggregateTypeCheckout = "checkout"

// Source identifier for events originating from this service.
const SourceCheckoutService = "checkout-service"

// CouponRedeemedData is the payload for a coupon_redeemed event.
type CouponRedeemedData struct {
	CouponID       string `json:"coupon_id"`
	Code           string `json:"code"`
	SessionID      string `json:"session_id"`
	UserID         string `json:"user_id,omitempty"`
	GuestEmail     string `json:"guest_email,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
}

// OrderCreatedData is the payload for an order_created event.
type OrderCreatedData struct {
	OrderID        string `json:"order_id"`
	SessionID      string `json:"session_id"`
	UserID         string `json:"user_id,omitempty"`
	GuestEmail     string `json:"guest_email,omitempty"`
	Currency       string `json:"currency"`
	TotalAmount    int64  `json:"total_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	CouponCode     string `json:"coupon_code,omitempty"`
	PaymentMethod  string `json:"payment_method"`
}

// Producer publishes checkout domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the checkout service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCouponRedeemed publishes a coupon_redeemed event.
func (p *Producer) PublishCouponRedeemed(ctx context.Context, session *domain.CheckoutSession, applied *domain.AppliedCoupon) error {
	data := CouponRedeemedData{
		CouponID:       applied.CouponID,
		Code:           applied.Code,
		SessionID:      session.ID,
		UserID:         session.UserID,
		GuestEmail:     session.GuestEmail,
		DiscountAmount: applied.DiscountAmount,
	}

	event, err := pkgkafka.NewEvent(TopicCouponRedeemed, session.ID, AggregateTypeCheckout, SourceCheckoutService, data)
	if err != nil {
		return fmt.Errorf("create coupon_redeemed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCouponRedeemed, event); err != nil {
		return fmt.Errorf("publish coupon_redeemed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published coupon_redeemed event",
		slog.String("session_id", session.ID),
		slog.String("code", applied.Code),
	)

	return nil
}

// PublishOrderCreated publishes an order_created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		OrderID:        order.ID,
		SessionID:      order.SessionID,
		UserID:         order.UserID,
		GuestEmail:     order.GuestEmail,
		Currency:       order.Currency,
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		CouponCode:     order.CouponCode,
		PaymentMethod:  order.PaymentMethod,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeCheckout, SourceCheckoutService, data)
	if err != nil {
		return fmt.Errorf("create order_created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order_created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order_created event",
		slog.String("order_id", order.ID),
		slog.String("session_id", order.SessionID),
	)

	return nil
}
