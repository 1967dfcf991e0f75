package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/handlers/render"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
)

type reviewResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	SpbuID    uuid.UUID `json:"spbu_id"`
	Rating    float64   `json:"rating"`
	Comment   *string   `json:"comment"`
	UserName  string    `json:"user_name"`
	SpbuName  string    `json:"spbu_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newReviewResponse(r models.Review) reviewResponse {
	return reviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		SpbuID:    r.SpbuID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		UserName:  r.UserName,
		SpbuName:  r.SpbuName,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func handleCreateReview(reviewService reviewService, l logger.Logger) http.Handler {
	type request struct {
		SpbuID  uuid.UUID `json:"spbu_id" validate:"required"`
		Rating  float64   `json:"rating" validate:"gte=1,lte=5"`
		Comment *string   `json:"comment" validate:"omitempty,max=2000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		review, err := reviewService.CreateReview(r.Context(), me.UserID, data.SpbuID, data.Rating, data.Comment)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, newReviewResponse(review), http.StatusCreated)
	})
}

func handleGetReview(reviewService reviewService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		review, err := reviewService.GetReview(r.Context(), id)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newReviewResponse(review))
	})
}

func handleUpdateReview(reviewService reviewService, l logger.Logger) http.Handler {
	type request struct {
		Rating  *float64 `json:"rating" validate:"omitempty,gte=1,lte=5"`
		Comment *string  `json:"comment" validate:"omitempty,max=2000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		review, err := reviewService.UpdateReview(r.Context(), me.UserID, id, data.Rating, data.Comment)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newReviewResponse(review))
	})
}

func handleDeleteReview(reviewService reviewService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := reviewService.DeleteReview(r.Context(), me.UserID, id); err != nil {
			renderError(w, err, l)
			return
		}
		render.NoContent(w)
	})
}

func handleListSpbuReviews(reviewService reviewService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}

		reviews, err := reviewService.ListReviewsOfSpbu(r.Context(), spbuID)
		if err != nil {
			renderError(w, err, l)
			return
		}

		res := make([]reviewResponse, 0, len(reviews))
		for _, review := range reviews {
			res = append(res, newReviewResponse(review))
		}
		render.JSON(w, res)
	})
}

func handleSpbuRating(reviewService reviewService, l logger.Logger) http.Handler {
	type ratingCount struct {
		Rating int `json:"rating"`
		Count  int `json:"count"`
	}
	type response struct {
		AverageRating      float64       `json:"average_rating"`
		TotalReviews       int64         `json:"total_reviews"`
		RatingDistribution []ratingCount `json:"rating_distribution"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}

		summary, err := reviewService.RatingSummary(r.Context(), spbuID)
		if err != nil {
			renderError(w, err, l)
			return
		}

		res := response{
			AverageRating:      summary.AverageRating,
			TotalReviews:       summary.TotalReviews,
			RatingDistribution: make([]ratingCount, 0, len(summary.Distribution)),
		}
		for _, c := range summary.Distribution {
			res.RatingDistribution = append(res.RatingDistribution, ratingCount{Rating: c.Rating, Count: c.Count})
		}
		render.JSON(w, res)
	})
}
