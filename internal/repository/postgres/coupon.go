package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/internal/repository"
	"github.com/emberglow/checkout-service/pkg/database"
	apperrors "github.com/emberglow/checkout-service/pkg/errors"
)

// CouponRepository implements repository.CouponRepository using PostgreSQL.
type CouponRepository struct {
	db database.Querier
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(db database.Querier) *CouponRepository {
	return &CouponRepository{db: db}
}

// GetByCode retrieves a coupon by its normalized code. Codes are stored
// upper-cased, so callers pass the normalized form.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
		SELECT id, code, kind, value, active, valid_from, valid_until,
			   max_global_uses, max_uses_per_redeemer, created_at, updated_at
		FROM coupons
		WHERE code = $1`

	var c domain.Coupon
	err := r.db.QueryRow(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.Kind,
		&c.Value,
		&c.Active,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.MaxGlobalUses,
		&c.MaxUsesPerRedeemer,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan coupon: %w", err)
	}

	return &c, nil
}

// CountRedemptions counts redemption-log rows for the coupon as of call time.
func (r *CouponRepository) CountRedemptions(ctx context.Context, couponID string) (int, error) {
	query := `SELECT count(*) FROM coupon_redemptions WHERE coupon_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, couponID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count redemptions: %w", err)
	}

	return count, nil
}

// AppendRedemption inserts one redemption-log row. With a positive cap the
// insert only proceeds while the coupon's redemption count is below the cap,
// in a single statement, so two racing sessions cannot both spend the last
// unit of capacity.
func (r *CouponRepository) AppendRedemption(ctx context.Context, rec *domain.RedemptionRecord, maxGlobalUses int) error {
	query := `
		INSERT INTO coupon_redemptions (id, coupon_id, user_id, email, created_at)
		SELECT $1, $2, $3, $4, $5
		WHERE $6 = 0
		   OR (SELECT count(*) FROM coupon_redemptions WHERE coupon_id = $2) < $6`

	ct, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.CouponID,
		nullableString(rec.UserID),
		nullableString(rec.Email),
		rec.CreatedAt,
		maxGlobalUses,
	)
	if err != nil {
		return fmt.Errorf("append redemption: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrRedemptionCapacity
	}

	return nil
}

// nullableString converts an empty string to nil so the column stores NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
