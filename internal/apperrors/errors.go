package apperrors

import (
	"errors"
)

// Error kinds. Every application error unwraps to exactly one of them,
// so transport layers may choose a status without knowing concrete errors.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Error is an application error with a client-safe message
type Error struct {
	Kind    error
	Message string
}

func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrUserAlreadyExists = New(ErrConflict, "user with this email already exists")
	ErrUserNotFound      = New(ErrNotFound, "user not found")
	ErrInvalidCredential = New(ErrUnauthenticated, "invalid email or password")
	ErrInvalidRole       = New(ErrInvalidInput, "invalid role")
	ErrNotAccountOwner   = New(ErrForbidden, "you may only manage your own account")
	ErrUserHasHistory    = New(ErrConflict, "user has transactions and can't be deleted")

	ErrBrandNotFound   = New(ErrNotFound, "brand not found")
	ErrServiceNotFound = New(ErrNotFound, "service not found")
	ErrSpbuNotFound    = New(ErrNotFound, "spbu not found")
	ErrSpbuInUse       = New(ErrConflict, "spbu has transactions and can't be deleted")

	ErrSpbuServiceExists   = New(ErrConflict, "service already added to spbu")
	ErrSpbuServiceNotFound = New(ErrNotFound, "service not found in this spbu")

	ErrFuelPriceNotFound = New(ErrNotFound, "fuel price not found for the spbu and fuel type")
	ErrInvalidPrice      = New(ErrInvalidInput, "price must be greater than 0")

	ErrReviewNotFound      = New(ErrNotFound, "review not found")
	ErrReviewAlreadyExists = New(ErrConflict, "you have already reviewed this spbu")
	ErrInvalidRating       = New(ErrInvalidInput, "rating must be between 1 and 5")

	ErrWishlistNotFound      = New(ErrNotFound, "spbu not found in wishlist")
	ErrWishlistAlreadyExists = New(ErrConflict, "spbu already in wishlist")

	ErrTransactionNotFound     = New(ErrNotFound, "transaction not found")
	ErrTransactionInvalidState = New(ErrConflict, "only pending transactions can be changed")
	ErrInvalidQuantity         = New(ErrInvalidInput, "quantity must be greater than 0")
)
