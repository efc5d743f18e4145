package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberglow/checkout-service/internal/domain"
	"github.com/emberglow/checkout-service/internal/repository"
	"github.com/emberglow/checkout-service/pkg/database"
	apperrors "github.com/emberglow/checkout-service/pkg/errors"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func setupCouponRepo(t *testing.T) (*CouponRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCouponRepository(mock)
	return repo, mock
}

func sampleCoupon() *domain.Coupon {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	from := now.Add(-24 * time.Hour)
	until := now.Add(30 * 24 * time.Hour)
	return &domain.Coupon{
		ID:                 "coup-001",
		Code:               "WELCOME",
		Kind:               domain.CouponKindPercentage,
		Value:              1000,
		Active:             true,
		ValidFrom:          &from,
		ValidUntil:         &until,
		MaxGlobalUses:      100,
		MaxUsesPerRedeemer: 1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func couponColumns() []string {
	return []string{
		"id", "code", "kind", "value", "active", "valid_from", "valid_until",
		"max_global_uses", "max_uses_per_redeemer", "created_at", "updated_at",
	}
}

func couponRow(c *domain.Coupon) *pgxmock.Rows {
	return pgxmock.NewRows(couponColumns()).
		AddRow(
			c.ID, c.Code, c.Kind, c.Value, c.Active, c.ValidFrom, c.ValidUntil,
			c.MaxGlobalUses, c.MaxUsesPerRedeemer, c.CreatedAt, c.UpdatedAt,
		)
}

// ---------------------------------------------------------------------------
// GetByCode
// ---------------------------------------------------------------------------

func TestCouponRepository_GetByCode_Success(t *testing.T) {
	repo, mock := setupCouponRepo(t)
	defer mock.Close()

	c := sampleCoupon()

	mock.ExpectQuery("SELECT .+ FROM coupons").
		WithArgs(c.Code).
		WillReturnRows(couponRow(c))

	result, err := repo.GetByCode(context.Background(), c.Code)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.ID, result.ID)
	assert.Equal(t, c.Value, result.Value)
	assert.Equal(t, c.MaxGlobalUses, result.MaxGlobalUses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepository_GetByCode_NotFound(t *testing.T) {
	repo, mock := setupCouponRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM coupons").
		WithArgs("NOPE").
		WillReturnRows(pgxmock.NewRows(couponColumns()))

	_, err := repo.GetByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepository_GetByCode_QueryError(t *testing.T) {
	repo, mock := setupCouponRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM coupons").
		WithArgs("WELCOME").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.GetByCode(context.Background(), "WELCOME")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scan coupon")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// CountRedemptions
// ---------------------------------------------------------------------------

func TestCouponRepository_CountRedemptions(t *testing.T) {
	repo, mock := setupCouponRepo(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM coupon_redemptions`).
		WithArgs("coup-001").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountRedemptions(context.Background(), "coup-001")
	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// AppendRedemption
// ---------------------------------------------------------------------------

func TestCouponRepository_AppendRedemption_Success(t *testing.T) {
	repo, mock := setupCouponRepo(t)
	defer mock.Close()

	rec := &domain.RedemptionRecord{
		ID:        "red-001",
		CouponID:  "coup-001",
		UserID:    "user-001",
		CreatedAt: time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO coupon_redemptions").
		WithArgs(rec.ID, rec.CouponID, "user-001", nil, rec.CreatedAt, 100).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.AppendRedemption(context.Background(), rec, 100)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepository_AppendRedemption_GuestEmail(t *testing.T) {
	repo, mock := setupCouponRepo(t)
	defer mock.Close()

	rec := &domain.RedemptionRecord{
		ID:        "red-002",
		CouponID:  "coup-001",
		Email:     "a@example.com",
		CreatedAt: time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO coupon_redemptions").
		WithArgs(rec.ID, rec.CouponID, nil, "a@example.com", rec.CreatedAt, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.AppendRedemption(context.Background(), rec, 0)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepository_AppendRedemption_CapacityExhausted(t *testing.T) {
	// The guarded insert affects zero rows when the cap is already spent.
	repo, mock := setupCouponRepo(t)
	defer mock.Close()

	rec := &domain.RedemptionRecord{
		ID:        "red-003",
		CouponID:  "coup-001",
		UserID:    "user-002",
		CreatedAt: time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO coupon_redemptions").
		WithArgs(rec.ID, rec.CouponID, "user-002", nil, rec.CreatedAt, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.AppendRedemption(context.Background(), rec, 1)
	assert.ErrorIs(t, err, repository.ErrRedemptionCapacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepository_AppendRedemption_ExecError(t *testing.T) {
	repo, mock := setupCouponRepo(t)
	defer mock.Close()

	rec := &domain.RedemptionRecord{
		ID:        "red-004",
		CouponID:  "coup-001",
		UserID:    "user-001",
		CreatedAt: time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO coupon_redemptions").
		WithArgs(rec.ID, rec.CouponID, "user-001", nil, rec.CreatedAt, 100).
		WillReturnError(errors.New("write timeout"))

	err := repo.AppendRedemption(context.Background(), rec, 100)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "append redemption")
	assert.NoError(t, mock.ExpectationsWereMet())
}
