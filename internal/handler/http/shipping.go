package http

import (
	"log/slog"
	"net/http"

	"github.com/emberglow/checkout-service/internal/service"
	"github.com/emberglow/checkout-service/pkg/httputil"
)

// ShippingHandler handles HTTP requests for the shipping method catalog.
type ShippingHandler struct {
	service *service.ShippingService
	logger  *slog.Logger
}

// NewShippingHandler creates a new shipping HTTP handler.
func NewShippingHandler(svc *service.ShippingService, logger *slog.Logger) *ShippingHandler {
	return &ShippingHandler{
		service: svc,
		logger:  logger,
	}
}

// ListShippingMethods handles GET /api/v1/shipping-methods
// @Summary List shipping methods
// @Description Returns the active shipping methods, cheapest first.
// @Tags shipping
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/shipping-methods [get]
func (h *ShippingHandler) ListShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListActiveMethods(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: methods})
}
