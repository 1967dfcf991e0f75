package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/numeric"
)

type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "pending"
	TransactionPaid       TransactionStatus = "paid"
	TransactionProcessing TransactionStatus = "processing"
	TransactionCompleted  TransactionStatus = "completed"
	TransactionCancelled  TransactionStatus = "cancelled"
)

func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch st := TransactionStatus(s); st {
	case TransactionPending, TransactionPaid, TransactionProcessing, TransactionCompleted, TransactionCancelled:
		return st, nil
	}
	return "", fmt.Errorf("invalid transaction status %q", s)
}

// Terminal statuses allow no further transitions
func (s TransactionStatus) Terminal() bool {
	return s == TransactionCompleted || s == TransactionCancelled
}

// CanTransition reports whether the workflow allows moving from s to next
//
//	pending    -> processing | cancelled
//	processing -> completed
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	switch s {
	case TransactionPending:
		return next == TransactionProcessing || next == TransactionCancelled
	case TransactionProcessing:
		return next == TransactionCompleted
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return st, nil
	}
	return "", fmt.Errorf("invalid payment status %q", s)
}

// Transaction is one fuel purchase
// PricePerLiter is a snapshot of the station price at creation and never changes
type Transaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	SpbuID        uuid.UUID
	FuelType      string
	Quantity      numeric.Decimal
	PricePerLiter numeric.Decimal
	TotalPrice    numeric.Decimal
	Status        TransactionStatus
	PaymentMethod string
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PaidAt        *time.Time
}
