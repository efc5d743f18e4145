package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/internal/repository"
	apperrors "github.com/emberglow/checkout-service/pkg/errors"
)

// ShippingService resolves shipping method selections against the catalog
// of active methods.
type ShippingService struct {
	methods repository.ShippingMethodRepository
	logger  *slog.Logger
}

// NewShippingService creates a new shipping service.
func NewShippingService(methods repository.ShippingMethodRepository, logger *slog.Logger) *ShippingService {
	return &ShippingService{
		methods: methods,
		logger:  logger,
	}
}

// ListActiveMethods returns the active shipping methods, cheapest first.
func (s *ShippingService) ListActiveMethods(ctx context.Context) ([]domain.ShippingMethod, error) {
	methods, err := s.methods.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active shipping methods: %w", err)
	}
	return methods, nil
}

// Select resolves a method id to its catalog entry. An unknown or inactive
// id yields a not-found error and no other effect; the caller's previous
// selection stays as it was.
func (s *ShippingService) Select(ctx context.Context, methodID string) (*domain.ShippingMethod, error) {
	if methodID == "" {
		return nil, apperrors.InvalidInput("shipping method id is required")
	}

	method, err := s.methods.GetActive(ctx, methodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("shipping method", methodID)
		}
		return nil, fmt.Errorf("get shipping method: %w", err)
	}

	return method, nil
}
