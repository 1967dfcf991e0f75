package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/repository"
	"github.com/nkiryanov/spbuhub/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestReviewsAndWishlist(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("Review", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, s repository.Storage) {
			author := mustCreateUser(t, s, "author@example.com")
			stranger := mustCreateUser(t, s, "stranger@example.com")
			spbu := mustCreateSpbu(t, s, "Reviewed")

			t.Run("create joined with names", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					created, err := s.Review().CreateReview(t.Context(), models.Review{UserID: author.ID, SpbuID: spbu.ID, Rating: 4.5, Comment: ptr("clean toilets")})
					require.NoError(t, err)

					assert.Equal(t, 4.5, created.Rating)
					assert.Equal(t, author.Name, created.UserName)
					assert.Equal(t, spbu.Name, created.SpbuName)

					got, err := s.Review().GetReview(t.Context(), created.ID)
					require.NoError(t, err)
					assert.Equal(t, created, got)
				})
			})

			t.Run("one review per user and station", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					_, err := s.Review().CreateReview(t.Context(), models.Review{UserID: author.ID, SpbuID: spbu.ID, Rating: 5})
					require.NoError(t, err)

					_, err = s.Review().CreateReview(t.Context(), models.Review{UserID: author.ID, SpbuID: spbu.ID, Rating: 1})
					require.ErrorIs(t, err, apperrors.ErrReviewAlreadyExists)
				})
			})

			t.Run("rating out of range", func(t *testing.T) {
				for _, rating := range []float64{0, 5.5} {
					inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
						_, err := s.Review().CreateReview(t.Context(), models.Review{UserID: author.ID, SpbuID: spbu.ID, Rating: rating})
						require.ErrorIs(t, err, apperrors.ErrInvalidRating)
					})
				}
			})

			t.Run("unknown station", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					_, err := s.Review().CreateReview(t.Context(), models.Review{UserID: author.ID, SpbuID: uuid.New(), Rating: 3})
					require.ErrorIs(t, err, apperrors.ErrSpbuNotFound)
				})
			})

			t.Run("partial update by owner only", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					created, err := s.Review().CreateReview(t.Context(), models.Review{UserID: author.ID, SpbuID: spbu.ID, Rating: 3, Comment: ptr("ok")})
					require.NoError(t, err)

					updated, err := s.Review().UpdateReview(t.Context(), created.ID, author.ID, ptr(4.0), nil)
					require.NoError(t, err)
					assert.Equal(t, 4.0, updated.Rating)
					require.NotNil(t, updated.Comment)
					assert.Equal(t, "ok", *updated.Comment, "comment must be kept when not passed")

					_, err = s.Review().UpdateReview(t.Context(), created.ID, stranger.ID, ptr(1.0), nil)
					require.ErrorIs(t, err, apperrors.ErrReviewNotFound)
				})
			})

			t.Run("delete by owner only", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					created, err := s.Review().CreateReview(t.Context(), models.Review{UserID: author.ID, SpbuID: spbu.ID, Rating: 3})
					require.NoError(t, err)

					_, err = s.Review().DeleteReview(t.Context(), created.ID, stranger.ID)
					require.ErrorIs(t, err, apperrors.ErrReviewNotFound)

					deleted, err := s.Review().DeleteReview(t.Context(), created.ID, author.ID)
					require.NoError(t, err)
					assert.Equal(t, spbu.ID, deleted.SpbuID)

					_, err = s.Review().GetReview(t.Context(), created.ID)
					require.ErrorIs(t, err, apperrors.ErrReviewNotFound)
				})
			})

			t.Run("rating summary and station rating", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					_, err := s.Review().CreateReview(t.Context(), models.Review{UserID: author.ID, SpbuID: spbu.ID, Rating: 5})
					require.NoError(t, err)
					_, err = s.Review().CreateReview(t.Context(), models.Review{UserID: stranger.ID, SpbuID: spbu.ID, Rating: 2})
					require.NoError(t, err)

					summary, err := s.Review().RatingSummary(t.Context(), spbu.ID)
					require.NoError(t, err)
					assert.Equal(t, 3.5, summary.AverageRating)
					assert.Equal(t, int64(2), summary.TotalReviews)
					assert.Equal(t, []models.RatingCount{
						{Rating: 5, Count: 1},
						{Rating: 4, Count: 0},
						{Rating: 3, Count: 0},
						{Rating: 2, Count: 1},
						{Rating: 1, Count: 0},
					}, summary.Distribution)

					reviews, err := s.Review().ListReviewsOfSpbu(t.Context(), spbu.ID)
					require.NoError(t, err)
					assert.Len(t, reviews, 2)

					require.NoError(t, s.Spbu().RefreshRating(t.Context(), spbu.ID))
					got, err := s.Spbu().GetSpbu(t.Context(), spbu.ID)
					require.NoError(t, err)
					require.NotNil(t, got.Rating)
					assert.Equal(t, 3.5, *got.Rating)
				})
			})

			t.Run("summary without reviews", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					summary, err := s.Review().RatingSummary(t.Context(), spbu.ID)

					require.NoError(t, err)
					assert.Zero(t, summary.AverageRating)
					assert.Zero(t, summary.TotalReviews)
					assert.Len(t, summary.Distribution, 5)
				})
			})
		})
	})

	t.Run("Wishlist", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, s repository.Storage) {
			user := mustCreateUser(t, s, "wisher@example.com")
			spbu := mustCreateSpbu(t, s, "Favourite")

			t.Run("add twice", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					item, err := s.Wishlist().AddToWishlist(t.Context(), user.ID, spbu.ID)
					require.NoError(t, err)
					assert.Equal(t, spbu.Name, item.SpbuName)
					assert.Equal(t, spbu.Address, item.SpbuAddress)

					_, err = s.Wishlist().AddToWishlist(t.Context(), user.ID, spbu.ID)
					require.ErrorIs(t, err, apperrors.ErrWishlistAlreadyExists)
				})
			})

			t.Run("add unknown station", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					_, err := s.Wishlist().AddToWishlist(t.Context(), user.ID, uuid.New())
					require.ErrorIs(t, err, apperrors.ErrSpbuNotFound)
				})
			})

			t.Run("get list remove", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					added, err := s.Wishlist().AddToWishlist(t.Context(), user.ID, spbu.ID)
					require.NoError(t, err)

					got, err := s.Wishlist().GetWishlistItem(t.Context(), user.ID, spbu.ID)
					require.NoError(t, err)
					assert.Equal(t, added, got)

					items, err := s.Wishlist().ListWishlist(t.Context(), user.ID)
					require.NoError(t, err)
					assert.Equal(t, []models.Wishlist{added}, items)

					require.NoError(t, s.Wishlist().RemoveFromWishlist(t.Context(), user.ID, spbu.ID))
					_, err = s.Wishlist().GetWishlistItem(t.Context(), user.ID, spbu.ID)
					require.ErrorIs(t, err, apperrors.ErrWishlistNotFound)
					require.ErrorIs(t, s.Wishlist().RemoveFromWishlist(t.Context(), user.ID, spbu.ID), apperrors.ErrWishlistNotFound)
				})
			})
		})
	})
}
