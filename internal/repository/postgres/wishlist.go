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

type WishlistRepo struct {
	DB DBTX
}

const selectWishlistJoined = `
SELECT w.id, w.user_id, w.spbu_id, w.created_at, s.name, s.address
FROM w
JOIN spbu s ON s.id = w.spbu_id
`

const addToWishlist = `-- name: AddToWishlist
WITH w AS (
	INSERT INTO wishlists (id, user_id, spbu_id, created_at)
	VALUES ($1, $2, $3, now())
	RETURNING *
)` + selectWishlistJoined

func (r *WishlistRepo) AddToWishlist(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) (models.Wishlist, error) {
	rows, _ := r.DB.Query(ctx, addToWishlist, uuid.New(), userID, spbuID)
	item, err := pgx.CollectOneRow(rows, rowToWishlist)

	if err == nil {
		return item, nil
	}
	if _, ok := pgError(err, pgerrcode.UniqueViolation); ok {
		return item, apperrors.ErrWishlistAlreadyExists
	}
	if pgErr, ok := pgError(err, pgerrcode.ForeignKeyViolation); ok {
		if pgErr.ConstraintName == "wishlists_user_id_fkey" {
			return item, apperrors.ErrUserNotFound
		}
		return item, apperrors.ErrSpbuNotFound
	}
	return item, fmt.Errorf("db error: %w", err)
}

const getWishlistItem = `-- name: GetWishlistItem
WITH w AS (
	SELECT * FROM wishlists WHERE user_id = $1 AND spbu_id = $2
)` + selectWishlistJoined

func (r *WishlistRepo) GetWishlistItem(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) (models.Wishlist, error) {
	rows, _ := r.DB.Query(ctx, getWishlistItem, userID, spbuID)
	item, err := pgx.CollectOneRow(rows, rowToWishlist)

	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, pgx.ErrNoRows):
		return item, apperrors.ErrWishlistNotFound
	default:
		return item, fmt.Errorf("db error: %w", err)
	}
}

const listWishlist = `-- name: ListWishlist
WITH w AS (
	SELECT * FROM wishlists WHERE user_id = $1
)` + selectWishlistJoined + `ORDER BY w.created_at DESC, w.id
`

func (r *WishlistRepo) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	rows, _ := r.DB.Query(ctx, listWishlist, userID)
	items, err := pgx.CollectRows(rows, rowToWishlist)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

const removeFromWishlist = `-- name: RemoveFromWishlist
DELETE FROM wishlists WHERE user_id = $1 AND spbu_id = $2
`

func (r *WishlistRepo) RemoveFromWishlist(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, removeFromWishlist, userID, spbuID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrWishlistNotFound
	}
	return nil
}

func rowToWishlist(row pgx.CollectableRow) (models.Wishlist, error) {
	var w models.Wishlist
	err := row.Scan(&w.ID, &w.UserID, &w.SpbuID, &w.CreatedAt, &w.SpbuName, &w.SpbuAddress)
	return w, err
}
