package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/numeric"
	"github.com/nkiryanov/spbuhub/internal/repository"
	"github.com/nkiryanov/spbuhub/internal/service/payment"
)

// Currency scale, totals never have fewer fractional digits
const totalScale = 2

// Purchase request of a user
type Purchase struct {
	SpbuID        uuid.UUID
	FuelType      string
	Quantity      numeric.Decimal
	PaymentMethod string
}

type TransactionService struct {
	storage repository.Storage
	gateway payment.Gateway
	metrics *Metrics
	logger  logger.Logger
}

func NewService(storage repository.Storage, gateway payment.Gateway, metrics *Metrics, l logger.Logger) *TransactionService {
	return &TransactionService{
		storage: storage,
		gateway: gateway,
		metrics: metrics,
		logger:  l,
	}
}

// Create pending transaction with the station's current fuel price
// Total price is computed here and never taken from the client
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, p Purchase) (models.Transaction, error) {
	if !p.Quantity.IsPositive() {
		return models.Transaction{}, apperrors.ErrInvalidQuantity
	}

	var created models.Transaction
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		if _, err := storage.User().GetUserByID(ctx, userID); err != nil {
			return err
		}
		if _, err := storage.Spbu().GetSpbu(ctx, p.SpbuID); err != nil {
			return err
		}

		fuelType := models.NormalizeFuelType(p.FuelType)
		price, err := storage.FuelPrice().GetFuelPrice(ctx, p.SpbuID, fuelType)
		if err != nil {
			return err
		}

		created, err = storage.Transaction().CreateTransaction(ctx, models.Transaction{
			UserID:        userID,
			SpbuID:        p.SpbuID,
			FuelType:      fuelType,
			Quantity:      p.Quantity,
			PricePerLiter: price.Price,
			TotalPrice:    p.Quantity.Mul(price.Price).TrimToScale(totalScale),
			Status:        models.TransactionPending,
			PaymentMethod: p.PaymentMethod,
			PaymentStatus: models.PaymentPending,
		})
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}

	s.metrics.inc(eventCreated)
	s.logger.Info("Transaction created", "transaction_id", created.ID, "user_id", userID, "total_price", created.TotalPrice)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Transaction, error) {
	return s.storage.Transaction().GetTransaction(ctx, id, userID, false)
}

// List user transactions, newest first
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	return s.storage.Transaction().ListTransactions(ctx, repository.ListTransactionsOpts{UserID: userID})
}

// Cancel pending transaction
// Row is locked for the check and the write, so it can't race with Pay
func (s *TransactionService) Cancel(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Transaction, error) {
	t, err := s.cancel(ctx, userID, id)
	if err != nil {
		return t, err
	}

	s.metrics.inc(eventCancelled)
	s.logger.Info("Transaction cancelled", "transaction_id", id, "user_id", userID)
	return t, nil
}

func (s *TransactionService) cancel(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Transaction, error) {
	var updated models.Transaction
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		t, err := storage.Transaction().GetTransaction(ctx, id, userID, true)
		if err != nil {
			return err
		}
		if !t.Status.CanTransition(models.TransactionCancelled) {
			return apperrors.ErrTransactionInvalidState
		}

		t.Status = models.TransactionCancelled
		updated, err = storage.Transaction().UpdateTransactionState(ctx, t)
		return err
	})

	return updated, err
}

// Pay charges pending transaction through the payment gateway
//
// Approved charge moves it to processing with payment status paid.
// Declined charge or gateway failure marks payment as failed and keeps it pending, so the user may retry.
// Both outcomes are stored while the row is still locked.
func (s *TransactionService) Pay(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Transaction, error) {
	var (
		updated  models.Transaction
		approved bool
	)
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		t, err := storage.Transaction().GetTransaction(ctx, id, userID, true)
		if err != nil {
			return err
		}
		if t.Status != models.TransactionPending {
			return apperrors.ErrTransactionInvalidState
		}

		res, err := s.gateway.Charge(ctx, payment.Charge{TransactionID: t.ID, Amount: t.TotalPrice, Method: t.PaymentMethod})
		switch {
		case err != nil:
			s.logger.Warn("Payment gateway failed", "transaction_id", t.ID, "error", err)
		case !res.Approved:
			s.logger.Info("Payment declined", "transaction_id", t.ID, "reason", res.Reason)
		default:
			approved = true
		}

		if approved {
			now := time.Now()
			t.Status = models.TransactionProcessing
			t.PaymentStatus = models.PaymentPaid
			t.PaidAt = &now
		} else {
			t.PaymentStatus = models.PaymentFailed
		}

		updated, err = storage.Transaction().UpdateTransactionState(ctx, t)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}

	if approved {
		s.metrics.inc(eventPaid)
		s.logger.Info("Transaction paid", "transaction_id", id, "user_id", userID)
	} else {
		s.metrics.inc(eventPaymentFailed)
	}
	return updated, nil
}

// ListStale pending transactions created before cutoff, newest first
func (s *TransactionService) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error) {
	return s.storage.Transaction().ListTransactions(ctx, repository.ListTransactionsOpts{
		Statuses:      []models.TransactionStatus{models.TransactionPending},
		CreatedBefore: cutoff,
		Limit:         limit,
	})
}

// Expire cancels stale pending transaction
// Transaction paid or cancelled meanwhile is reported with ErrTransactionInvalidState
func (s *TransactionService) Expire(ctx context.Context, t models.Transaction) error {
	if _, err := s.cancel(ctx, t.UserID, t.ID); err != nil {
		return err
	}

	s.metrics.inc(eventExpired)
	s.logger.Info("Transaction expired", "transaction_id", t.ID, "user_id", t.UserID, "created_at", t.CreatedAt)
	return nil
}

// ExpireStale cancels every transaction pending for longer than olderThan
// Returns number of expired transactions
func (s *TransactionService) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.ListStale(ctx, time.Now().Add(-olderThan), 0)
	if err != nil {
		return 0, fmt.Errorf("list stale transactions: %w", err)
	}

	expired := 0
	for _, t := range stale {
		err := s.Expire(ctx, t)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, apperrors.ErrTransactionInvalidState):
			// Paid or cancelled after listing
		default:
			return expired, fmt.Errorf("expire transaction %s: %w", t.ID, err)
		}
	}

	return expired, nil
}
