package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/internal/service"
	"github.com/emberglow/checkout-service/pkg/httputil"
	"github.com/emberglow/checkout-service/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout session endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateCheckoutRequest is the JSON request body for opening a checkout
// session. Either user_id or guest_email must be present.
type CreateCheckoutRequest struct {
	UserID         string `json:"user_id" validate:"omitempty,uuid"`
	GuestEmail     string `json:"guest_email" validate:"omitempty,email"`
	Currency       string `json:"currency" validate:"required,len=3"`
	SubtotalAmount int64  `json:"subtotal_amount" validate:"gte=0"`
}

// SetSubtotalRequest is the JSON request body for updating the cart subtotal.
type SetSubtotalRequest struct {
	SubtotalAmount int64 `json:"subtotal_amount" validate:"gte=0"`
}

// SetTaxRateRequest is the JSON request body for overriding the tax rate.
type SetTaxRateRequest struct {
	TaxRateBps int64 `json:"tax_rate_bps" validate:"gte=0"`
}

// SelectShippingMethodRequest is the JSON request body for selecting a
// shipping method.
type SelectShippingMethodRequest struct {
	MethodID string `json:"method_id" validate:"required"`
}

// SetShippingAddressRequest is the JSON request body for setting the
// shipping address.
type SetShippingAddressRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Country     string `json:"country" validate:"required"`
	Phone       string `json:"phone"`
}

// SetPaymentMethodRequest is the JSON request body for choosing the payment
// method. payment_proof_ref is only meaningful for bank transfers.
type SetPaymentMethodRequest struct {
	PaymentMethod   string `json:"payment_method" validate:"required"`
	PaymentProofRef string `json:"payment_proof_ref"`
}

// ApplyCouponRequest is the JSON request body for applying a coupon code.
// The code is deliberately not validated here; an empty or unknown code gets
// its specific rejection from the redemption pipeline.
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// --- Handlers ---

// CreateCheckout handles POST /api/v1/checkout
// @Summary Open a checkout session
// @Description Opens a new checkout session for a registered user or a guest.
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body CreateCheckoutRequest true "Checkout session data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/checkout/ [post]
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[CreateCheckoutRequest](w, r)
	if !ok {
		return
	}

	input := &service.CreateSessionInput{
		UserID:         req.UserID,
		GuestEmail:     req.GuestEmail,
		Currency:       req.Currency,
		SubtotalAmount: req.SubtotalAmount,
	}

	session, err := h.service.CreateSession(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: session})
}

// GetCheckout handles GET /api/v1/checkout/{id}
// @Summary Get a checkout session
// @Description Returns a checkout session with its current pricing breakdown.
// @Tags checkout
// @Produce json
// @Param id path string true "Checkout session UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/checkout/{id} [get]
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SetSubtotal handles PUT /api/v1/checkout/{id}/subtotal
// @Summary Update the cart subtotal
// @Description Updates the subtotal and recomputes the order total.
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "Checkout session UUID"
// @Param request body SetSubtotalRequest true "Subtotal data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 410 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/checkout/{id}/subtotal [put]
func (h *CheckoutHandler) SetSubtotal(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	req, ok := decode[SetSubtotalRequest](w, r)
	if !ok {
		return
	}

	session, err := h.service.SetSubtotal(r.Context(), id, req.SubtotalAmount)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SetTaxRate handles PUT /api/v1/checkout/{id}/tax-rate
// @Summary Override the tax rate
// @Description Overrides the session's tax rate in basis points and recomputes the total.
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "Checkout session UUID"
// @Param request body SetTaxRateRequest true "Tax rate data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 410 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/checkout/{id}/tax-rate [put]
func (h *CheckoutHandler) SetTaxRate(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	req, ok := decode[SetTaxRateRequest](w, r)
	if !ok {
		return
	}

	session, err := h.service.SetTaxRate(r.Context(), id, req.TaxRateBps)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SelectShippingMethod handles PUT /api/v1/checkout/{id}/shipping-method
// @Summary Select a shipping method
// @Description Selects a shipping method from the catalog; an unknown method leaves the previous selection unchanged.
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "Checkout session UUID"
// @Param request body SelectShippingMethodRequest true "Shipping method selection"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 410 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/checkout/{id}/shipping-method [put]
func (h *CheckoutHandler) SelectShippingMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	req, ok := decode[SelectShippingMethodRequest](w, r)
	if !ok {
		return
	}

	session, err := h.service.SelectShipping(r.Context(), id, req.MethodID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SetShippingAddress handles PUT /api/v1/checkout/{id}/shipping-address
// @Summary Set the shipping address
// @Description Sets or replaces the delivery address on the checkout session.
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "Checkout session UUID"
// @Param request body SetShippingAddressRequest true "Shipping address data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 410 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/checkout/{id}/shipping-address [put]
func (h *CheckoutHandler) SetShippingAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	req, ok := decode[SetShippingAddressRequest](w, r)
	if !ok {
		return
	}

	address := &domain.Address{
		FullName:    req.FullName,
		AddressLine: req.AddressLine,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Phone:       req.Phone,
	}

	session, err := h.service.SetShippingAddress(r.Context(), id, address)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SetPaymentMethod handles PUT /api/v1/checkout/{id}/payment-method
// @Summary Choose the payment method
// @Description Records the payment method; bank transfers may carry a proof-of-payment reference.
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "Checkout session UUID"
// @Param request body SetPaymentMethodRequest true "Payment method data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 410 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/checkout/{id}/payment-method [put]
func (h *CheckoutHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	req, ok := decode[SetPaymentMethodRequest](w, r)
	if !ok {
		return
	}

	session, err := h.service.SetPaymentMethod(r.Context(), id, req.PaymentMethod, req.PaymentProofRef)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// ApplyCoupon handles POST /api/v1/checkout/{id}/coupon
// @Summary Apply a coupon code
// @Description Validates and redeems a coupon code against the session. At most one coupon per session.
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "Checkout session UUID"
// @Param request body ApplyCouponRequest true "Coupon code"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 410 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/checkout/{id}/coupon [post]
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	req, ok := decode[ApplyCouponRequest](w, r)
	if !ok {
		return
	}

	session, err := h.service.ApplyCoupon(r.Context(), id, req.Code)
	if err != nil {
		writeCouponAware(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// Submit handles POST /api/v1/checkout/{id}/submit
// @Summary Submit the checkout
// @Description Freezes the session into an immutable order.
// @Tags checkout
// @Produce json
// @Param id path string true "Checkout session UUID"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 410 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/checkout/{id}/submit [post]
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	order, err := h.service.Submit(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// --- Helpers ---

// sessionID extracts the {id} path parameter. Returns false if it wrote an
// error response.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "checkout id is required"},
		})
		return "", false
	}
	return id, true
}

// decode reads and validates a JSON request body. Returns false if it wrote
// an error response.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return req, false
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return req, false
	}

	return req, true
}
