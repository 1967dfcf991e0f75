package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nkiryanov/spbuhub/internal/handlers/middleware"
	"github.com/nkiryanov/spbuhub/internal/handlers/render"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/numeric"
	"github.com/nkiryanov/spbuhub/internal/service/auth"
	"github.com/nkiryanov/spbuhub/internal/service/transaction"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type Services struct {
	Auth        authService
	User        userService
	Catalog     catalogService
	Review      reviewService
	Wishlist    wishlistService
	Transaction transactionService
	Health      pinger
}

type Config struct {
	AllowedOrigins []string

	// Limits credential routes (register, login, forgot password), nil means no limit
	AuthRateLimiter *middleware.RateLimiter

	// HTTP metrics and /metrics exposition, disabled if nil
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg Config, s Services, logger logger.Logger) http.Handler {
	withAuth := middleware.AuthMiddleware(s.Auth, logger)
	admin := func(h http.Handler) http.Handler {
		return chain(h, withAuth, middleware.RequireRole(models.RoleAdmin))
	}
	limited := func(h http.Handler) http.Handler {
		if cfg.AuthRateLimiter == nil {
			return h
		}
		return cfg.AuthRateLimiter.Handler(h)
	}

	mux := http.NewServeMux()

	// Users
	mux.Handle("POST /register", limited(handleRegister(s.Auth, logger)))
	mux.Handle("POST /login", limited(handleLogin(s.Auth, logger)))
	mux.Handle("POST /forgot_password", limited(handleForgotPassword(s.Auth, logger)))
	mux.Handle("GET /users", handleListUsers(s.User, logger))
	mux.Handle("GET /me", withAuth(handleUserMe(s.User, logger)))
	mux.Handle("GET /user/{id}", withAuth(handleGetUser(s.User, logger)))
	mux.Handle("PUT /user/{id}", withAuth(handleUpdateUser(s.User, logger)))
	mux.Handle("DELETE /user/{id}", withAuth(handleDeleteUser(s.User, logger)))
	mux.Handle("PUT /user/{id}/role", admin(handleSetRole(s.User, logger)))

	// Brands
	mux.Handle("GET /brands", handleListBrands(s.Catalog, logger))
	mux.Handle("GET /brands/{id}", handleGetBrand(s.Catalog, logger))
	mux.Handle("POST /brands", withAuth(handleCreateBrand(s.Catalog, logger)))
	mux.Handle("PUT /brands/{id}", withAuth(handleUpdateBrand(s.Catalog, logger)))
	mux.Handle("DELETE /brands/{id}", withAuth(handleDeleteBrand(s.Catalog, logger)))

	// Services (station amenities)
	mux.Handle("GET /services", handleListServices(s.Catalog, logger))
	mux.Handle("GET /services/{id}", handleGetService(s.Catalog, logger))
	mux.Handle("GET /services/{service_id}/spbus", handleListSpbuWithService(s.Catalog, logger))
	mux.Handle("POST /services", withAuth(handleCreateService(s.Catalog, logger)))
	mux.Handle("PUT /services/{id}", withAuth(handleUpdateService(s.Catalog, logger)))
	mux.Handle("DELETE /services/{id}", withAuth(handleDeleteService(s.Catalog, logger)))

	// Stations
	mux.Handle("GET /spbu", handleListSpbu(s.Catalog, logger))
	mux.Handle("GET /spbu/{id}", handleGetSpbu(s.Catalog, logger))
	mux.Handle("POST /spbu", withAuth(handleCreateSpbu(s.Catalog, logger)))
	mux.Handle("PUT /spbu/{id}", withAuth(handleUpdateSpbu(s.Catalog, logger)))
	mux.Handle("DELETE /spbu/{id}", withAuth(handleDeleteSpbu(s.Catalog, logger)))

	mux.Handle("GET /spbu/{spbu_id}/fuel-prices", handleListFuelPrices(s.Catalog, logger))
	mux.Handle("PUT /spbu/{spbu_id}/fuel-prices/{fuel_type}", withAuth(handleSetFuelPrice(s.Catalog, logger)))
	mux.Handle("DELETE /spbu/{spbu_id}/fuel-prices/{fuel_type}", withAuth(handleDeleteFuelPrice(s.Catalog, logger)))

	mux.Handle("GET /spbu/{spbu_id}/services", handleListServicesOfSpbu(s.Catalog, logger))
	mux.Handle("POST /spbu/{spbu_id}/services", withAuth(handleLinkService(s.Catalog, logger)))
	mux.Handle("DELETE /spbu/{spbu_id}/services/{service_id}", withAuth(handleUnlinkService(s.Catalog, logger)))

	mux.Handle("GET /spbu/{spbu_id}/reviews", handleListSpbuReviews(s.Review, logger))
	mux.Handle("GET /spbu/{spbu_id}/rating", handleSpbuRating(s.Review, logger))

	// Reviews
	mux.Handle("POST /reviews", withAuth(handleCreateReview(s.Review, logger)))
	mux.Handle("GET /reviews/{id}", withAuth(handleGetReview(s.Review, logger)))
	mux.Handle("PUT /reviews/{id}", withAuth(handleUpdateReview(s.Review, logger)))
	mux.Handle("DELETE /reviews/{id}", withAuth(handleDeleteReview(s.Review, logger)))

	// Wishlist
	mux.Handle("POST /wishlist", withAuth(handleAddToWishlist(s.Wishlist, logger)))
	mux.Handle("GET /wishlist", withAuth(handleListWishlist(s.Wishlist, logger)))
	mux.Handle("GET /wishlist/{spbu_id}", withAuth(handleGetWishlistItem(s.Wishlist, logger)))
	mux.Handle("DELETE /wishlist/{spbu_id}", withAuth(handleRemoveFromWishlist(s.Wishlist, logger)))

	// Transactions
	mux.Handle("POST /transactions", withAuth(handleCreateTransaction(s.Transaction, logger)))
	mux.Handle("GET /transactions", withAuth(handleListTransactions(s.Transaction, logger)))
	mux.Handle("GET /transactions/{id}", withAuth(handleTransactionAction(s.Transaction.Get, logger)))
	mux.Handle("DELETE /transactions/{id}", withAuth(handleTransactionAction(s.Transaction.Cancel, logger)))
	mux.Handle("POST /transactions/{id}/pay", withAuth(handleTransactionAction(s.Transaction.Pay, logger)))

	// Operations
	mux.Handle("GET /healthz", handleHealth(s.Health, logger))
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	mds := []func(http.Handler) http.Handler{
		middleware.LoggerMiddleware(logger),
		middleware.CORS(cfg.AllowedOrigins),
	}
	if cfg.Metrics != nil {
		mds = append(mds, cfg.Metrics.Handler)
	}

	return chain(mux, mds...)
}

func handleHealth(db pinger, l logger.Logger) http.Handler {
	type response struct {
		Status string `json:"status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			l.Error("Health check failed", "error", err)
			render.ServiceError(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		render.JSON(w, response{Status: "ok"})
	})
}

type pinger interface {
	Ping(ctx context.Context) error
}

type authService interface {
	// Register user, has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, reg auth.Registration) (models.User, error)

	// Login with email and password
	// Has to return apperrors.ErrInvalidCredential if user not found or password is wrong
	Login(ctx context.Context, email string, password string) (models.User, models.IssuedToken, error)

	// Reset password, has to return apperrors.ErrUserNotFound if no user with the email
	ForgotPassword(ctx context.Context, email string, newPassword string) error

	// Get request and return caller identity if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.Identity, error)
}

type userService interface {
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, caller models.Identity, id uuid.UUID, profile models.UserProfile) (models.User, error)
	DeleteUser(ctx context.Context, caller models.Identity, id uuid.UUID) error
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) (models.User, error)
}

type catalogService interface {
	CreateBrand(ctx context.Context, b models.Brand) (models.Brand, error)
	GetBrand(ctx context.Context, id uuid.UUID) (models.Brand, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)
	UpdateBrand(ctx context.Context, b models.Brand) (models.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error

	CreateService(ctx context.Context, svc models.Service) (models.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	UpdateService(ctx context.Context, svc models.Service) (models.Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error

	CreateSpbu(ctx context.Context, spbu models.Spbu) (models.Spbu, error)
	GetSpbu(ctx context.Context, id uuid.UUID) (models.Spbu, error)
	ListSpbu(ctx context.Context) ([]models.Spbu, error)
	UpdateSpbu(ctx context.Context, spbu models.Spbu) (models.Spbu, error)
	DeleteSpbu(ctx context.Context, id uuid.UUID) error

	SetFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string, price numeric.Decimal) (models.FuelPrice, error)
	ListFuelPrices(ctx context.Context, spbuID uuid.UUID) ([]models.FuelPrice, error)
	DeleteFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string) error

	LinkService(ctx context.Context, spbuID uuid.UUID, serviceID uuid.UUID) (models.SpbuService, error)
	UnlinkService(ctx context.Context, spbuID uuid.UUID, serviceID uuid.UUID) error
	ListServicesOfSpbu(ctx context.Context, spbuID uuid.UUID) ([]models.Service, error)
	ListSpbuWithService(ctx context.Context, serviceID uuid.UUID) ([]models.Spbu, error)
}

type reviewService interface {
	CreateReview(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID, rating float64, comment *string) (models.Review, error)
	GetReview(ctx context.Context, id uuid.UUID) (models.Review, error)
	ListReviewsOfSpbu(ctx context.Context, spbuID uuid.UUID) ([]models.Review, error)
	UpdateReview(ctx context.Context, userID uuid.UUID, id uuid.UUID, rating *float64, comment *string) (models.Review, error)
	DeleteReview(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	RatingSummary(ctx context.Context, spbuID uuid.UUID) (models.RatingSummary, error)
}

type wishlistService interface {
	Add(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) (models.Wishlist, error)
	Get(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) (models.Wishlist, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error)
	Remove(ctx context.Context, userID uuid.UUID, spbuID uuid.UUID) error
}

// All operations are scoped by the owning user, other users' transactions are not found
type transactionService interface {
	Create(ctx context.Context, userID uuid.UUID, p transaction.Purchase) (models.Transaction, error)
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Transaction, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	Cancel(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Transaction, error)
	Pay(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Transaction, error)
}
