package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/models"
)

const (
	defaultTokenTTL      = 30 * 24 * time.Hour
	defaultSigningMethod = "HS256"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims of the bearer token
// Subject holds the user id
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// Token manager with sensible default
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Token lifetime
	// If not set than default is used
	TTL time.Duration
}

type TokenManager struct {
	// Secret key to sign tokens
	key []byte

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	ttl time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if _, ok := alg.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing method %q", cfg.Alg)
	}

	if cfg.TTL == 0 {
		cfg.TTL = defaultTokenTTL
	}

	return &TokenManager{
		key: []byte(cfg.SecretKey),
		alg: alg,
		ttl: cfg.TTL,
	}, nil
}

// Issue signed token for the identity
func (m *TokenManager) Issue(identity models.Identity) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(
		m.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   identity.UserID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Role: identity.Role,
		},
	)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse and validate token
// Returns ErrTokenExpired if the token is well signed but expired and ErrTokenInvalid on any other problem
func (m *TokenManager) Validate(token string) (models.Identity, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.Identity{}, ErrTokenExpired
	case err != nil:
		return models.Identity{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	if !claims.Role.Valid() {
		return models.Identity{}, fmt.Errorf("%w: bad role", ErrTokenInvalid)
	}

	return models.Identity{UserID: userID, Role: claims.Role}, nil
}
