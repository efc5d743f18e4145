package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/pkg/database"
	apperrors "github.com/emberglow/checkout-service/pkg/errors"
)

// ShippingMethodRepository implements repository.ShippingMethodRepository
// using PostgreSQL.
type ShippingMethodRepository struct {
	db database.Querier
}

// NewShippingMethodRepository creates a new PostgreSQL-backed shipping
// method repository.
func NewShippingMethodRepository(db database.Querier) *ShippingMethodRepository {
	return &ShippingMethodRepository{db: db}
}

// ListActive returns all active shipping methods, cheapest first.
func (r *ShippingMethodRepository) ListActive(ctx context.Context) ([]domain.ShippingMethod, error) {
	query := `
		SELECT id, name, description, price_amount, icon, active, created_at, updated_at
		FROM shipping_methods
		WHERE active = true
		ORDER BY price_amount ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shipping methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.ShippingMethod
	for rows.Next() {
		var m domain.ShippingMethod
		if err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Description,
			&m.PriceAmount,
			&m.Icon,
			&m.Active,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan shipping method row: %w", err)
		}
		methods = append(methods, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipping method rows: %w", err)
	}

	if methods == nil {
		methods = []domain.ShippingMethod{}
	}

	return methods, nil
}

// GetActive retrieves an active shipping method by id.
func (r *ShippingMethodRepository) GetActive(ctx context.Context, id string) (*domain.ShippingMethod, error) {
	query := `
		SELECT id, name, description, price_amount, icon, active, created_at, updated_at
		FROM shipping_methods
		WHERE id = $1 AND active = true`

	var m domain.ShippingMethod
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&m.PriceAmount,
		&m.Icon,
		&m.Active,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan shipping method: %w", err)
	}

	return &m, nil
}
