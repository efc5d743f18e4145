package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/pkg/httputil"
)

// writeCouponAware renders coupon redemption failures with their pipeline
// code, falling back to the shared error writer for everything else. An
// unknown code is a 404, a store failure is a 503, and every other rejection
// is a 422 so the storefront can show the specific reason.
func writeCouponAware(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var ce *domain.CouponError
	if !errors.As(err, &ce) {
		httputil.WriteError(w, r, err, logger)
		return
	}

	status := http.StatusUnprocessableEntity
	switch ce.Code {
	case domain.CouponErrNotFound:
		status = http.StatusNotFound
	case domain.CouponErrPersistenceFailure:
		status = http.StatusServiceUnavailable
	}

	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{Code: ce.Code, Message: ce.Message},
	})
}
