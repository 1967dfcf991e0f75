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

type ServiceRepo struct {
	DB DBTX
}

const createService = `-- name: CreateService
INSERT INTO services (id, name, icon_url)
VALUES ($1, $2, $3)
RETURNING id, name, icon_url
`

func (r *ServiceRepo) CreateService(ctx context.Context, s models.Service) (models.Service, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createService, s.ID, s.Name, s.IconURL)
	return collectService(rows)
}

const getService = `-- name: GetService
SELECT id, name, icon_url FROM services
WHERE id = $1
`

func (r *ServiceRepo) GetService(ctx context.Context, id uuid.UUID) (models.Service, error) {
	rows, _ := r.DB.Query(ctx, getService, id)
	return collectService(rows)
}

const listServices = `-- name: ListServices
SELECT id, name, icon_url FROM services
ORDER BY name, id
`

func (r *ServiceRepo) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, _ := r.DB.Query(ctx, listServices)
	services, err := pgx.CollectRows(rows, rowToService)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return services, nil
}

const updateService = `-- name: UpdateService
UPDATE services
SET name = $2, icon_url = $3
WHERE id = $1
RETURNING id, name, icon_url
`

func (r *ServiceRepo) UpdateService(ctx context.Context, s models.Service) (models.Service, error) {
	rows, _ := r.DB.Query(ctx, updateService, s.ID, s.Name, s.IconURL)
	return collectService(rows)
}

const deleteService = `-- name: DeleteService
DELETE FROM services WHERE id = $1
`

func (r *ServiceRepo) DeleteService(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteService, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrServiceNotFound
	}
	return nil
}

func collectService(rows pgx.Rows) (models.Service, error) {
	service, err := pgx.CollectOneRow(rows, rowToService)

	switch {
	case err == nil:
		return service, nil
	case errors.Is(err, pgx.ErrNoRows):
		return service, apperrors.ErrServiceNotFound
	default:
		return service, fmt.Errorf("db error: %w", err)
	}
}

func rowToService(row pgx.CollectableRow) (models.Service, error) {
	var s models.Service
	err := row.Scan(&s.ID, &s.Name, &s.IconURL)
	return s, err
}
