package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emberglow/checkout-service/internal/service"
	"github.com/emberglow/checkout-service/pkg/health"
	"github.com/emberglow/checkout-service/pkg/middleware"
)

// NewRouter creates a chi router with all checkout service routes registered.
func NewRouter(
	checkoutService *service.CheckoutService,
	shippingService *service.ShippingService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS)
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("checkout"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Checkout API endpoints
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	shippingHandler := NewShippingHandler(shippingService, logger)

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", checkoutHandler.CreateCheckout)
		r.Get("/{id}", checkoutHandler.GetCheckout)
		r.Put("/{id}/subtotal", checkoutHandler.SetSubtotal)
		r.Put("/{id}/tax-rate", checkoutHandler.SetTaxRate)
		r.Put("/{id}/shipping-method", checkoutHandler.SelectShippingMethod)
		r.Put("/{id}/shipping-address", checkoutHandler.SetShippingAddress)
		r.Put("/{id}/payment-method", checkoutHandler.SetPaymentMethod)
		r.Post("/{id}/coupon", checkoutHandler.ApplyCoupon)
		r.Post("/{id}/submit", checkoutHandler.Submit)
	})

	r.Route("/api/v1/shipping-methods", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", shippingHandler.ListShippingMethods)
	})

	return r
}
