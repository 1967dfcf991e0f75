package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/numeric"
)

type Brand struct {
	ID      uuid.UUID
	Name    string
	LogoURL string
}

// Service is an amenity a station offers (car wash, minimarket, ...)
type Service struct {
	ID      uuid.UUID
	Name    string
	IconURL string
}

// Spbu is a fuel station
type Spbu struct {
	ID         uuid.UUID
	Name       string
	Address    string
	Latitude   *float64
	Longitude  *float64
	BrandID    *uuid.UUID
	Rating     *float64
	PumpCount  *int32
	QueueCount *int32
	PhotoURL   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NormalizeFuelType makes fuel type lookups case and space insensitive: " Pertamax " is "pertamax"
func NormalizeFuelType(fuelType string) string {
	return strings.ToLower(strings.TrimSpace(fuelType))
}

// FuelPrice is the current price of one fuel type at one station
type FuelPrice struct {
	SpbuID    uuid.UUID
	FuelType  string
	Price     numeric.Decimal
	UpdatedAt time.Time
}

type SpbuService struct {
	SpbuID    uuid.UUID
	ServiceID uuid.UUID
	CreatedAt time.Time
}
