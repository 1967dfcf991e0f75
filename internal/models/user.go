package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOperator, RoleAdmin:
		return true
	}
	return false
}

// Satisfies reports whether r grants access to a route that requires role
// Admin satisfies any requirement
func (r Role) Satisfies(required Role) bool {
	return r == required || r == RoleAdmin
}

type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	HashedPassword string
	Phone          string
	Gender         string
	BirthDate      *time.Time
	PhotoURL       string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile fields a user may change about themselves
type UserProfile struct {
	Name      string
	Email     string
	Phone     string
	Gender    string
	BirthDate *time.Time
	PhotoURL  string
}

// Identity is the authenticated caller resolved from a bearer token
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
