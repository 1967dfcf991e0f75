package wishlist

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/repository"
)

type WishlistService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *WishlistService {
	return &WishlistService{storage: storage}
}

func (s *WishlistService) Add(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) (models.Wishlist, error) {
	return s.storage.Wishlist().AddToWishlist(ctx, userID, spbuID)
}

func (s *WishlistService) Get(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) (models.Wishlist, error) {
	return s.storage.Wishlist().GetWishlistItem(ctx, userID, spbuID)
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	return s.storage.Wishlist().ListWishlist(ctx, userID)
}

func (s *WishlistService) Remove(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) error {
	return s.storage.Wishlist().RemoveFromWishlist(ctx, userID, spbuID)
}
