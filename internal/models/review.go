package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1.0
	MaxRating = 5.0
)

type Review struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	SpbuID    uuid.UUID
	Rating    float64
	Comment   *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Filled on reads only
	UserName string
	SpbuName string
}

type RatingCount struct {
	Rating int
	Count  int
}

type RatingSummary struct {
	AverageRating float64
	TotalReviews  int64
	Distribution  []RatingCount
}

type Wishlist struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	SpbuID    uuid.UUID
	CreatedAt time.Time

	// Filled on reads only
	SpbuName    string
	SpbuAddress string
}
