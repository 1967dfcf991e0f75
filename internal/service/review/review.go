package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/repository"
)

type ReviewService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ReviewService {
	return &ReviewService{storage: storage}
}

func validRating(rating float64) bool {
	return rating >= models.MinRating && rating <= models.MaxRating
}

// CreateReview of the station by the user
// Station rating is recalculated in the same db transaction
func (s *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID, rating float64, comment *string) (models.Review, error) {
	if !validRating(rating) {
		return models.Review{}, apperrors.ErrInvalidRating
	}

	var review models.Review
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		review, err = storage.Review().CreateReview(ctx, models.Review{UserID: userID, SpbuID: spbuID, Rating: rating, Comment: comment})
		if err != nil {
			return err
		}
		return storage.Spbu().RefreshRating(ctx, spbuID)
	})

	return review, err
}

func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (models.Review, error) {
	return s.storage.Review().GetReview(ctx, id)
}

func (s *ReviewService) ListReviewsOfSpbu(ctx context.Context, spbuID uuid.UUID) ([]models.Review, error) {
	if _, err := s.storage.Spbu().GetSpbu(ctx, spbuID); err != nil {
		return nil, err
	}
	return s.storage.Review().ListReviewsOfSpbu(ctx, spbuID)
}

// UpdateReview changes passed fields of the user's own review
func (s *ReviewService) UpdateReview(ctx context.Context, userID uuid.UUID, id uuid.UUID, rating *float64, comment *string) (models.Review, error) {
	if rating != nil && !validRating(*rating) {
		return models.Review{}, apperrors.ErrInvalidRating
	}

	var review models.Review
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		review, err = storage.Review().UpdateReview(ctx, id, userID, rating, comment)
		if err != nil {
			return err
		}
		return storage.Spbu().RefreshRating(ctx, review.SpbuID)
	})

	return review, err
}

func (s *ReviewService) DeleteReview(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	return s.storage.InTx(ctx, func(storage repository.Storage) error {
		review, err := storage.Review().DeleteReview(ctx, id, userID)
		if err != nil {
			return err
		}
		return storage.Spbu().RefreshRating(ctx, review.SpbuID)
	})
}

func (s *ReviewService) RatingSummary(ctx context.Context, spbuID uuid.UUID) (models.RatingSummary, error) {
	if _, err := s.storage.Spbu().GetSpbu(ctx, spbuID); err != nil {
		return models.RatingSummary{}, err
	}
	return s.storage.Review().RatingSummary(ctx, spbuID)
}
