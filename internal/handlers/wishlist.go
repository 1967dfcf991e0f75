package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/handlers/render"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
)

type wishlistResponse struct {
	ID          uuid.UUID `json:"id"`
	SpbuID      uuid.UUID `json:"spbu_id"`
	SpbuName    string    `json:"spbu_name"`
	SpbuAddress string    `json:"spbu_address"`
	CreatedAt   time.Time `json:"created_at"`
}

func newWishlistResponse(w models.Wishlist) wishlistResponse {
	return wishlistResponse{
		ID:          w.ID,
		SpbuID:      w.SpbuID,
		SpbuName:    w.SpbuName,
		SpbuAddress: w.SpbuAddress,
		CreatedAt:   w.CreatedAt,
	}
}

func handleAddToWishlist(wishlist wishlistService, l logger.Logger) http.Handler {
	type request struct {
		SpbuID uuid.UUID `json:"spbu_id" validate:"required"`
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

		item, err := wishlist.Add(r.Context(), me.UserID, data.SpbuID)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, newWishlistResponse(item), http.StatusCreated)
	})
}

func handleListWishlist(wishlist wishlistService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}

		items, err := wishlist.List(r.Context(), me.UserID)
		if err != nil {
			renderError(w, err, l)
			return
		}

		res := make([]wishlistResponse, 0, len(items))
		for _, item := range items {
			res = append(res, newWishlistResponse(item))
		}
		render.JSON(w, res)
	})
}

func handleGetWishlistItem(wishlist wishlistService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}

		item, err := wishlist.Get(r.Context(), me.UserID, spbuID)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newWishlistResponse(item))
	})
}

func handleRemoveFromWishlist(wishlist wishlistService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}

		if err := wishlist.Remove(r.Context(), me.UserID, spbuID); err != nil {
			renderError(w, err, l)
			return
		}
		render.NoContent(w)
	})
}
