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
	"github.com/emberglow/checkout-service/pkg/database"
	apperrors "github.com/emberglow/checkout-service/pkg/errors"
)

func setupShippingRepo(t *testing.T) (*ShippingMethodRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewShippingMethodRepository(mock)
	return repo, mock
}

func shippingColumns() []string {
	return []string{"id", "name", "description", "price_amount", "icon", "active", "created_at", "updated_at"}
}

func sampleShippingMethods() []domain.ShippingMethod {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return []domain.ShippingMethod{
		{ID: "sm-pickup", Name: "Store pickup", Description: "Collect in store", PriceAmount: 0, Icon: "store", Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: "sm-standard", Name: "Standard", Description: "3-5 business days", PriceAmount: 500, Icon: "truck", Active: true, CreatedAt: now, UpdatedAt: now},
	}
}

func TestShippingMethodRepository_ListActive(t *testing.T) {
	repo, mock := setupShippingRepo(t)
	defer mock.Close()

	methods := sampleShippingMethods()
	rows := pgxmock.NewRows(shippingColumns())
	for _, m := range methods {
		rows.AddRow(m.ID, m.Name, m.Description, m.PriceAmount, m.Icon, m.Active, m.CreatedAt, m.UpdatedAt)
	}

	mock.ExpectQuery("SELECT .+ FROM shipping_methods").
		WillReturnRows(rows)

	result, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "sm-pickup", result[0].ID)
	assert.Equal(t, int64(500), result[1].PriceAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShippingMethodRepository_ListActive_Empty(t *testing.T) {
	repo, mock := setupShippingRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM shipping_methods").
		WillReturnRows(pgxmock.NewRows(shippingColumns()))

	result, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShippingMethodRepository_GetActive_Success(t *testing.T) {
	repo, mock := setupShippingRepo(t)
	defer mock.Close()

	m := sampleShippingMethods()[1]
	mock.ExpectQuery("SELECT .+ FROM shipping_methods").
		WithArgs(m.ID).
		WillReturnRows(pgxmock.NewRows(shippingColumns()).
			AddRow(m.ID, m.Name, m.Description, m.PriceAmount, m.Icon, m.Active, m.CreatedAt, m.UpdatedAt))

	result, err := repo.GetActive(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.PriceAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShippingMethodRepository_GetActive_NotFound(t *testing.T) {
	repo, mock := setupShippingRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM shipping_methods").
		WithArgs("sm-nope").
		WillReturnRows(pgxmock.NewRows(shippingColumns()))

	_, err := repo.GetActive(context.Background(), "sm-nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShippingMethodRepository_GetActive_QueryError(t *testing.T) {
	repo, mock := setupShippingRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM shipping_methods").
		WithArgs("sm-standard").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.GetActive(context.Background(), "sm-standard")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
