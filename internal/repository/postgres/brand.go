package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
)

type BrandRepo struct {
	DB DBTX
}

const createBrand = `-- name: CreateBrand
INSERT INTO brands (id, name, logo_url)
VALUES ($1, $2, $3)
RETURNING id, name, logo_url
`

func (r *BrandRepo) CreateBrand(ctx context.Context, b models.Brand) (models.Brand, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createBrand, b.ID, b.Name, b.LogoURL)
	return collectBrand(rows)
}

const getBrand = `-- name: GetBrand
SELECT id, name, logo_url FROM brands
WHERE id = $1
`

func (r *BrandRepo) GetBrand(ctx context.Context, id uuid.UUID) (models.Brand, error) {
	rows, _ := r.DB.Query(ctx, getBrand, id)
	return collectBrand(rows)
}

const listBrands = `-- name: ListBrands
SELECT id, name, logo_url FROM brands
ORDER BY name, id
`

func (r *BrandRepo) ListBrands(ctx context.Context) ([]models.Brand, error) {
	rows, _ := r.DB.Query(ctx, listBrands)
	brands, err := pgx.CollectRows(rows, rowToBrand)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return brands, nil
}

const updateBrand = `-- name: UpdateBrand
UPDATE brands
SET name = $2, logo_url = $3
WHERE id = $1
RETURNING id, name, logo_url
`

func (r *BrandRepo) UpdateBrand(ctx context.Context, b models.Brand) (models.Brand, error) {
	rows, _ := r.DB.Query(ctx, updateBrand, b.ID, b.Name, b.LogoURL)
	return collectBrand(rows)
}

const deleteBrand = `-- name: DeleteBrand
DELETE FROM brands WHERE id = $1
`

func (r *BrandRepo) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteBrand, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBrandNotFound
	}
	return nil
}

func collectBrand(rows pgx.Rows) (models.Brand, error) {
	brand, err := pgx.CollectOneRow(rows, rowToBrand)

	switch {
	case err == nil:
		return brand, nil
	case errors.Is(err, pgx.ErrNoRows):
		return brand, apperrors.ErrBrandNotFound
	default:
		return brand, fmt.Errorf("db error: %w", err)
	}
}

func rowToBrand(row pgx.CollectableRow) (models.Brand, error) {
	var b models.Brand
	err := row.Scan(&b.ID, &b.Name, &b.LogoURL)
	return b, err
}
