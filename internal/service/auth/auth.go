package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/repository"
)

const (
	defaultAccessHeaderName = "Authorization"
	defaultAccessAuthScheme = "Bearer"
)

// Auth errors, all of them are apperrors.ErrUnauthenticated
var (
	ErrNoToken = apperrors.New(apperrors.ErrUnauthenticated, "no bearer token")
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	// Returns ErrPasswordMismatch if password is wrong
	Compare(hashedPassword string, password string) error
}

type TokenManager interface {
	Issue(identity models.Identity) (models.IssuedToken, error)
	Validate(token string) (models.Identity, error)
}

type Config struct {
	// Hasher to use during user registration or login process
	// Argon2id if not set
	Hasher PasswordHasher

	// Header and scheme the token is expected in
	AccessHeaderName string
	AccessAuthScheme string
}

// Data required to register a user
type Registration struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	Gender    string
	BirthDate *time.Time
	PhotoURL  string
}

type AuthService struct {
	accessHeaderName string
	accessAuthScheme string

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Hash compared when user not exists so login takes the same time
	dummyHash string

	tokenManager TokenManager
	storage      repository.Storage
}

func NewService(cfg Config, tokenManager TokenManager, storage repository.Storage) (*AuthService, error) {
	setDefault := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefault(&cfg.AccessHeaderName, defaultAccessHeaderName)
	setDefault(&cfg.AccessAuthScheme, defaultAccessAuthScheme)

	if cfg.Hasher == nil {
		cfg.Hasher = NewArgon2Hasher()
	}

	dummyHash, err := cfg.Hasher.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("hasher is not working. Err: %w", err)
	}

	return &AuthService{
		accessHeaderName: cfg.AccessHeaderName,
		accessAuthScheme: cfg.AccessAuthScheme,
		hasher:           cfg.Hasher,
		dummyHash:        dummyHash,
		tokenManager:     tokenManager,
		storage:          storage,
	}, nil
}

// Register user with regular role
func (s *AuthService) Register(ctx context.Context, reg Registration) (models.User, error) {
	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.storage.User().CreateUser(ctx, models.User{
		Name:           reg.Name,
		Email:          reg.Email,
		HashedPassword: hash,
		Phone:          reg.Phone,
		Gender:         reg.Gender,
		BirthDate:      reg.BirthDate,
		PhotoURL:       reg.PhotoURL,
		Role:           models.RoleUser,
	})
}

// Login user and issue token
// Wrong email and wrong password are indistinguishable: apperrors.ErrInvalidCredential
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.IssuedToken, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		return models.User{}, models.IssuedToken{}, apperrors.ErrInvalidCredential
	case err != nil:
		return models.User{}, models.IssuedToken{}, err
	}

	err = s.hasher.Compare(user.HashedPassword, password)
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return models.User{}, models.IssuedToken{}, apperrors.ErrInvalidCredential
	case err != nil:
		return models.User{}, models.IssuedToken{}, fmt.Errorf("error while comparing password. Err: %w", err)
	}

	token, err := s.tokenManager.Issue(models.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return models.User{}, models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, token, nil
}

// Reset password of the user with the email
func (s *AuthService) ForgotPassword(ctx context.Context, email string, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	_, err = s.storage.User().SetPassword(ctx, email, hash)
	return err
}

// Auth resolves the caller identity from the request bearer token
// Token errors are returned wrapped, so the caller may tell expired tokens from invalid ones
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.Identity, error) {
	header := r.Header.Get(s.accessHeaderName)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, s.accessAuthScheme) || strings.TrimSpace(token) == "" {
		return models.Identity{}, ErrNoToken
	}

	identity, err := s.tokenManager.Validate(strings.TrimSpace(token))
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}

	return identity, nil
}
