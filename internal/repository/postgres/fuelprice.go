package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/numeric"
)

type FuelPriceRepo struct {
	DB DBTX
}

const upsertFuelPrice = `-- name: UpsertFuelPrice
INSERT INTO fuel_prices (spbu_id, fuel_type, price, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (spbu_id, fuel_type) DO UPDATE
SET price = EXCLUDED.price, updated_at = EXCLUDED.updated_at
RETURNING spbu_id, fuel_type, price, updated_at
`

func (r *FuelPriceRepo) UpsertFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string, price numeric.Decimal) (models.FuelPrice, error) {
	rows, _ := r.DB.Query(ctx, upsertFuelPrice, spbuID, fuelType, price)
	fp, err := pgx.CollectOneRow(rows, rowToFuelPrice)

	if err != nil {
		if _, ok := pgError(err, pgerrcode.ForeignKeyViolation); ok {
			return fp, apperrors.ErrSpbuNotFound
		}
		if _, ok := pgError(err, pgerrcode.CheckViolation); ok {
			return fp, apperrors.ErrInvalidPrice
		}
		return fp, fmt.Errorf("db error: %w", err)
	}

	return fp, nil
}

const getFuelPrice = `-- name: GetFuelPrice
SELECT spbu_id, fuel_type, price, updated_at FROM fuel_prices
WHERE spbu_id = $1 AND fuel_type = $2
`

func (r *FuelPriceRepo) GetFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string) (models.FuelPrice, error) {
	rows, _ := r.DB.Query(ctx, getFuelPrice, spbuID, fuelType)
	fp, err := pgx.CollectOneRow(rows, rowToFuelPrice)

	switch {
	case err == nil:
		return fp, nil
	case errors.Is(err, pgx.ErrNoRows):
		return fp, apperrors.ErrFuelPriceNotFound
	default:
		return fp, fmt.Errorf("db error: %w", err)
	}
}

const listFuelPrices = `-- name: ListFuelPrices
SELECT spbu_id, fuel_type, price, updated_at FROM fuel_prices
WHERE spbu_id = $1
ORDER BY fuel_type
`

func (r *FuelPriceRepo) ListFuelPrices(ctx context.Context, spbuID uuid.UUID) ([]models.FuelPrice, error) {
	rows, _ := r.DB.Query(ctx, listFuelPrices, spbuID)
	prices, err := pgx.CollectRows(rows, rowToFuelPrice)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return prices, nil
}

const deleteFuelPrice = `-- name: DeleteFuelPrice
DELETE FROM fuel_prices WHERE spbu_id = $1 AND fuel_type = $2
`

func (r *FuelPriceRepo) DeleteFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string) error {
	tag, err := r.DB.Exec(ctx, deleteFuelPrice, spbuID, fuelType)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFuelPriceNotFound
	}
	return nil
}

func rowToFuelPrice(row pgx.CollectableRow) (models.FuelPrice, error) {
	var fp models.FuelPrice
	err := row.Scan(&fp.SpbuID, &fp.FuelType, &fp.Price, &fp.UpdatedAt)
	return fp, err
}
