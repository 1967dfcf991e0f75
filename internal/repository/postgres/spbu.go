package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
)

type SpbuRepo struct {
	DB DBTX
}

const spbuColumns = `id, name, address, latitude, longitude, brand_id, rating, pump_count, queue_count, photo_url, created_at, updated_at`

const createSpbu = `-- name: CreateSpbu
INSERT INTO spbu (id, name, address, latitude, longitude, brand_id, rating, pump_count, queue_count, photo_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
RETURNING ` + spbuColumns

func (r *SpbuRepo) CreateSpbu(ctx context.Context, s models.Spbu) (models.Spbu, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createSpbu,
		s.ID, s.Name, s.Address, s.Latitude, s.Longitude, s.BrandID, s.Rating, s.PumpCount, s.QueueCount, s.PhotoURL, time.Now(),
	)
	return collectSpbu(rows)
}

const getSpbu = `-- name: GetSpbu
SELECT ` + spbuColumns + ` FROM spbu
WHERE id = $1
`

func (r *SpbuRepo) GetSpbu(ctx context.Context, id uuid.UUID) (models.Spbu, error) {
	rows, _ := r.DB.Query(ctx, getSpbu, id)
	return collectSpbu(rows)
}

const listSpbu = `-- name: ListSpbu
SELECT ` + spbuColumns + ` FROM spbu
ORDER BY name, id
`

func (r *SpbuRepo) ListSpbu(ctx context.Context) ([]models.Spbu, error) {
	rows, _ := r.DB.Query(ctx, listSpbu)
	stations, err := pgx.CollectRows(rows, rowToSpbu)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stations, nil
}

const updateSpbu = `-- name: UpdateSpbu
UPDATE spbu
SET name = $2, address = $3, latitude = $4, longitude = $5, brand_id = $6, rating = $7,
	pump_count = $8, queue_count = $9, photo_url = $10, updated_at = now()
WHERE id = $1
RETURNING ` + spbuColumns

func (r *SpbuRepo) UpdateSpbu(ctx context.Context, s models.Spbu) (models.Spbu, error) {
	rows, _ := r.DB.Query(ctx, updateSpbu,
		s.ID, s.Name, s.Address, s.Latitude, s.Longitude, s.BrandID, s.Rating, s.PumpCount, s.QueueCount, s.PhotoURL,
	)
	return collectSpbu(rows)
}

const deleteSpbu = `-- name: DeleteSpbu
DELETE FROM spbu WHERE id = $1
`

func (r *SpbuRepo) DeleteSpbu(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteSpbu, id)

	switch {
	case err != nil:
		if _, ok := pgError(err, pgerrcode.ForeignKeyViolation); ok {
			return apperrors.ErrSpbuInUse
		}
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrSpbuNotFound
	default:
		return nil
	}
}

const refreshSpbuRating = `-- name: RefreshSpbuRating
UPDATE spbu
SET rating = (SELECT avg(rating) FROM reviews WHERE spbu_id = $1), updated_at = now()
WHERE id = $1
`

func (r *SpbuRepo) RefreshRating(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, refreshSpbuRating, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSpbuNotFound
	}
	return nil
}

func collectSpbu(rows pgx.Rows) (models.Spbu, error) {
	spbu, err := pgx.CollectOneRow(rows, rowToSpbu)

	switch {
	case err == nil:
		return spbu, nil
	case errors.Is(err, pgx.ErrNoRows):
		return spbu, apperrors.ErrSpbuNotFound
	default:
		if _, ok := pgError(err, pgerrcode.ForeignKeyViolation); ok {
			return spbu, apperrors.ErrBrandNotFound
		}
		return spbu, fmt.Errorf("db error: %w", err)
	}
}

func rowToSpbu(row pgx.CollectableRow) (models.Spbu, error) {
	var s models.Spbu
	err := row.Scan(
		&s.ID, &s.Name, &s.Address, &s.Latitude, &s.Longitude, &s.BrandID, &s.Rating,
		&s.PumpCount, &s.QueueCount, &s.PhotoURL, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}
