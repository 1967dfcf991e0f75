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
)

type SpbuServiceRepo struct {
	DB DBTX
}

// Link the service to the station
// Nothing is returned if the pair exists already
const linkSpbuService = `-- name: LinkSpbuService
INSERT INTO spbu_services (spbu_id, service_id, created_at)
VALUES ($1, $2, now())
ON CONFLICT DO NOTHING
RETURNING spbu_id, service_id, created_at
`

func (r *SpbuServiceRepo) Link(ctx context.Context, spbuID uuid.UUID, serviceID uuid.UUID) (models.SpbuService, error) {
	rows, _ := r.DB.Query(ctx, linkSpbuService, spbuID, serviceID)
	link, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.SpbuService, error) {
		var l models.SpbuService
		err := row.Scan(&l.SpbuID, &l.ServiceID, &l.CreatedAt)
		return l, err
	})

	switch {
	case err == nil:
		return link, nil
	case errors.Is(err, pgx.ErrNoRows):
		return link, apperrors.ErrSpbuServiceExists
	}

	if pgErr, ok := pgError(err, pgerrcode.ForeignKeyViolation); ok {
		if pgErr.ConstraintName == "spbu_services_service_id_fkey" {
			return link, apperrors.ErrServiceNotFound
		}
		return link, apperrors.ErrSpbuNotFound
	}

	return link, fmt.Errorf("db error: %w", err)
}

const unlinkSpbuService = `-- name: UnlinkSpbuService
DELETE FROM spbu_services WHERE spbu_id = $1 AND service_id = $2
`

func (r *SpbuServiceRepo) Unlink(ctx context.Context, spbuID uuid.UUID, serviceID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, unlinkSpbuService, spbuID, serviceID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSpbuServiceNotFound
	}
	return nil
}

const listServicesOfSpbu = `-- name: ListServicesOfSpbu
SELECT s.id, s.name, s.icon_url
FROM services s
JOIN spbu_services ss ON ss.service_id = s.id
WHERE ss.spbu_id = $1
ORDER BY s.name, s.id
`

func (r *SpbuServiceRepo) ListServicesOfSpbu(ctx context.Context, spbuID uuid.UUID) ([]models.Service, error) {
	rows, _ := r.DB.Query(ctx, listServicesOfSpbu, spbuID)
	services, err := pgx.CollectRows(rows, rowToService)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return services, nil
}

const listSpbuWithService = `-- name: ListSpbuWithService
SELECT sp.id, sp.name, sp.address, sp.latitude, sp.longitude, sp.brand_id, sp.rating,
	sp.pump_count, sp.queue_count, sp.photo_url, sp.created_at, sp.updated_at
FROM spbu sp
JOIN spbu_services ss ON ss.spbu_id = sp.id
WHERE ss.service_id = $1
ORDER BY sp.name, sp.id
`

func (r *SpbuServiceRepo) ListSpbuWithService(ctx context.Context, serviceID uuid.UUID) ([]models.Spbu, error) {
	rows, _ := r.DB.Query(ctx, listSpbuWithService, serviceID)
	stations, err := pgx.CollectRows(rows, rowToSpbu)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stations, nil
}
