package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/numeric"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// Get user by it's id or email (case-insensitive)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	ListUsers(ctx context.Context) ([]models.User, error)

	// Replace profile fields. Password and role are never touched here
	UpdateUser(ctx context.Context, userID uuid.UUID, profile models.UserProfile) (models.User, error)
	SetPassword(ctx context.Context, email string, hashedPassword string) (models.User, error)
	SetRole(ctx context.Context, userID uuid.UUID, role models.Role) (models.User, error)
	// User who has transactions can't be deleted: apperrors.ErrUserHasHistory
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type BrandRepo interface {
	CreateBrand(ctx context.Context, brand models.Brand) (models.Brand, error)
	GetBrand(ctx context.Context, id uuid.UUID) (models.Brand, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)
	UpdateBrand(ctx context.Context, brand models.Brand) (models.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

type ServiceRepo interface {
	CreateService(ctx context.Context, service models.Service) (models.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	UpdateService(ctx context.Context, service models.Service) (models.Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
}

type SpbuRepo interface {
	// Unknown brand returns apperrors.ErrBrandNotFound
	CreateSpbu(ctx context.Context, spbu models.Spbu) (models.Spbu, error)
	GetSpbu(ctx context.Context, id uuid.UUID) (models.Spbu, error)
	ListSpbu(ctx context.Context) ([]models.Spbu, error)
	UpdateSpbu(ctx context.Context, spbu models.Spbu) (models.Spbu, error)

	// Station referenced by transactions can't be deleted: apperrors.ErrSpbuInUse
	DeleteSpbu(ctx context.Context, id uuid.UUID) error

	// Recalculate station rating as the average of its reviews
	RefreshRating(ctx context.Context, id uuid.UUID) error
}

type FuelPriceRepo interface {
	// Insert or replace price of the fuel type at the station
	UpsertFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string, price numeric.Decimal) (models.FuelPrice, error)

	// If price not found must return apperrors.ErrFuelPriceNotFound
	GetFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string) (models.FuelPrice, error)
	ListFuelPrices(ctx context.Context, spbuID uuid.UUID) ([]models.FuelPrice, error)
	DeleteFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string) error
}

type SpbuServiceRepo interface {
	// Link returns apperrors.ErrSpbuServiceExists if the pair is linked already
	Link(ctx context.Context, spbuID uuid.UUID, serviceID uuid.UUID) (models.SpbuService, error)
	Unlink(ctx context.Context, spbuID uuid.UUID, serviceID uuid.UUID) error

	ListServicesOfSpbu(ctx context.Context, spbuID uuid.UUID) ([]models.Service, error)
	ListSpbuWithService(ctx context.Context, serviceID uuid.UUID) ([]models.Spbu, error)
}

type ReviewRepo interface {
	// One review per user and station: apperrors.ErrReviewAlreadyExists
	CreateReview(ctx context.Context, review models.Review) (models.Review, error)
	GetReview(ctx context.Context, id uuid.UUID) (models.Review, error)
	ListReviewsOfSpbu(ctx context.Context, spbuID uuid.UUID) ([]models.Review, error)

	// Update and delete are scoped by owner, someone else's review is not found
	// Nil fields are left as is
	UpdateReview(ctx context.Context, id uuid.UUID, userID uuid.UUID, rating *float64, comment *string) (models.Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Review, error)

	RatingSummary(ctx context.Context, spbuID uuid.UUID) (models.RatingSummary, error)
}

type WishlistRepo interface {
	AddToWishlist(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) (models.Wishlist, error)
	GetWishlistItem(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) (models.Wishlist, error)
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error)
	RemoveFromWishlist(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) error
}

// Options to filter transactions
// Zero values mean no filter
type ListTransactionsOpts struct {
	UserID        uuid.UUID
	Statuses      []models.TransactionStatus
	CreatedBefore time.Time
	Limit         int
}

type TransactionRepo interface {
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)

	// Get transaction owned by the user
	// If lock is true the row is locked (FOR UPDATE) till the surrounding db transaction ends
	// Someone else's transaction is not found: apperrors.ErrTransactionNotFound
	GetTransaction(ctx context.Context, id uuid.UUID, userID uuid.UUID, lock bool) (models.Transaction, error)

	// Newest first
	ListTransactions(ctx context.Context, opts ListTransactionsOpts) ([]models.Transaction, error)

	// Persist status, payment status and paid_at of the transaction
	UpdateTransactionState(ctx context.Context, t models.Transaction) (models.Transaction, error)
}

// Storage gives access to all the repositories sharing one connection or db transaction
type Storage interface {
	User() UserRepo
	Brand() BrandRepo
	Service() ServiceRepo
	Spbu() SpbuRepo
	FuelPrice() FuelPriceRepo
	SpbuService() SpbuServiceRepo
	Review() ReviewRepo
	Wishlist() WishlistRepo
	Transaction() TransactionRepo

	// Run fn in db transaction
	// The transaction is committed if fn returns nil and rolled back otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
