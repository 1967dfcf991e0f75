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

type ReviewRepo struct {
	DB DBTX
}

// Reviews are always returned with the author and station names
const selectReviewJoined = `
SELECT r.id, r.user_id, r.spbu_id, r.rating, r.comment, r.created_at, r.updated_at, u.name, s.name
FROM r
JOIN users u ON u.id = r.user_id
JOIN spbu s ON s.id = r.spbu_id
`

const createReview = `-- name: CreateReview
WITH r AS (
	INSERT INTO reviews (id, user_id, spbu_id, rating, comment, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6)
	RETURNING *
)` + selectReviewJoined

func (r *ReviewRepo) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createReview, review.ID, review.UserID, review.SpbuID, review.Rating, review.Comment, time.Now())
	created, err := pgx.CollectOneRow(rows, rowToReview)

	if err == nil {
		return created, nil
	}
	if _, ok := pgError(err, pgerrcode.UniqueViolation); ok {
		return created, apperrors.ErrReviewAlreadyExists
	}
	if _, ok := pgError(err, pgerrcode.CheckViolation); ok {
		return created, apperrors.ErrInvalidRating
	}
	if pgErr, ok := pgError(err, pgerrcode.ForeignKeyViolation); ok {
		if pgErr.ConstraintName == "reviews_user_id_fkey" {
			return created, apperrors.ErrUserNotFound
		}
		return created, apperrors.ErrSpbuNotFound
	}
	return created, fmt.Errorf("db error: %w", err)
}

const getReview = `-- name: GetReview
WITH r AS (
	SELECT * FROM reviews WHERE id = $1
)` + selectReviewJoined

func (r *ReviewRepo) GetReview(ctx context.Context, id uuid.UUID) (models.Review, error) {
	rows, _ := r.DB.Query(ctx, getReview, id)
	return collectReview(rows)
}

const listReviewsOfSpbu = `-- name: ListReviewsOfSpbu
WITH r AS (
	SELECT * FROM reviews WHERE spbu_id = $1
)` + selectReviewJoined + `ORDER BY r.created_at DESC, r.id
`

func (r *ReviewRepo) ListReviewsOfSpbu(ctx context.Context, spbuID uuid.UUID) ([]models.Review, error) {
	rows, _ := r.DB.Query(ctx, listReviewsOfSpbu, spbuID)
	reviews, err := pgx.CollectRows(rows, rowToReview)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reviews, nil
}

const updateReview = `-- name: UpdateReview
WITH r AS (
	UPDATE reviews
	SET rating = COALESCE($3, rating), comment = COALESCE($4, comment), updated_at = now()
	WHERE id = $1 AND user_id = $2
	RETURNING *
)` + selectReviewJoined

func (r *ReviewRepo) UpdateReview(ctx context.Context, id uuid.UUID, userID uuid.UUID, rating *float64, comment *string) (models.Review, error) {
	rows, _ := r.DB.Query(ctx, updateReview, id, userID, rating, comment)
	review, err := collectReview(rows)

	if _, ok := pgError(err, pgerrcode.CheckViolation); ok {
		return review, apperrors.ErrInvalidRating
	}
	return review, err
}

const deleteReview = `-- name: DeleteReview
WITH r AS (
	DELETE FROM reviews
	WHERE id = $1 AND user_id = $2
	RETURNING *
)` + selectReviewJoined

func (r *ReviewRepo) DeleteReview(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Review, error) {
	rows, _ := r.DB.Query(ctx, deleteReview, id, userID)
	return collectReview(rows)
}

const ratingTotals = `-- name: RatingTotals
SELECT COALESCE(avg(rating), 0)::float8, count(*)
FROM reviews
WHERE spbu_id = $1
`

// Ratings are bucketed to the nearest whole star, empty buckets included
const ratingDistribution = `-- name: RatingDistribution
SELECT g.star, count(r.id)
FROM generate_series(5, 1, -1) AS g(star)
LEFT JOIN reviews r ON r.spbu_id = $1 AND round(r.rating)::int = g.star
GROUP BY g.star
ORDER BY g.star DESC
`

func (r *ReviewRepo) RatingSummary(ctx context.Context, spbuID uuid.UUID) (models.RatingSummary, error) {
	var summary models.RatingSummary

	err := r.DB.QueryRow(ctx, ratingTotals, spbuID).Scan(&summary.AverageRating, &summary.TotalReviews)
	if err != nil {
		return summary, fmt.Errorf("db error: %w", err)
	}

	rows, _ := r.DB.Query(ctx, ratingDistribution, spbuID)
	summary.Distribution, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RatingCount, error) {
		var rc models.RatingCount
		var count int64
		err := row.Scan(&rc.Rating, &count)
		rc.Count = int(count)
		return rc, err
	})
	if err != nil {
		return summary, fmt.Errorf("db error: %w", err)
	}

	return summary, nil
}

func collectReview(rows pgx.Rows) (models.Review, error) {
	review, err := pgx.CollectOneRow(rows, rowToReview)

	switch {
	case err == nil:
		return review, nil
	case errors.Is(err, pgx.ErrNoRows):
		return review, apperrors.ErrReviewNotFound
	default:
		return review, fmt.Errorf("db error: %w", err)
	}
}

func rowToReview(row pgx.CollectableRow) (models.Review, error) {
	var r models.Review
	err := row.Scan(&r.ID, &r.UserID, &r.SpbuID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt, &r.UserName, &r.SpbuName)
	return r, err
}
