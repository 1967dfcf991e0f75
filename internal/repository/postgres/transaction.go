package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/repository"
)

type TransactionRepo struct {
	DB DBTX
}

const transactionColumns = `id, user_id, spbu_id, fuel_type, quantity, price_per_liter, total_price,
	status::text, payment_method, payment_status::text, created_at, updated_at, paid_at`

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, user_id, spbu_id, fuel_type, quantity, price_per_liter, total_price,
	status, payment_method, payment_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
RETURNING ` + transactionColumns

func (r *TransactionRepo) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = models.TransactionPending
	}
	if t.PaymentStatus == "" {
		t.PaymentStatus = models.PaymentPending
	}

	rows, _ := r.DB.Query(ctx, createTransaction,
		t.ID, t.UserID, t.SpbuID, t.FuelType, t.Quantity, t.PricePerLiter, t.TotalPrice,
		string(t.Status), t.PaymentMethod, string(t.PaymentStatus), time.Now(),
	)
	created, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err == nil {
		return created, nil
	}
	if _, ok := pgError(err, pgerrcode.CheckViolation); ok {
		return created, apperrors.ErrInvalidQuantity
	}
	if pgErr, ok := pgError(err, pgerrcode.ForeignKeyViolation); ok {
		if pgErr.ConstraintName == "transactions_user_id_fkey" {
			return created, apperrors.ErrUserNotFound
		}
		return created, apperrors.ErrSpbuNotFound
	}
	return created, fmt.Errorf("db error: %w", err)
}

const getTransaction = `-- name: GetTransaction
SELECT ` + transactionColumns + ` FROM transactions
WHERE id = $1 AND user_id = $2
`

func (r *TransactionRepo) GetTransaction(ctx context.Context, id uuid.UUID, userID uuid.UUID, lock bool) (models.Transaction, error) {
	query := getTransaction
	if lock {
		query += "FOR UPDATE\n"
	}

	rows, _ := r.DB.Query(ctx, query, id, userID)
	return collectTransaction(rows)
}

const listTransactions = `-- name: ListTransactions
SELECT ` + transactionColumns + ` FROM transactions
WHERE ($1::uuid IS NULL OR user_id = $1)
	AND (cardinality($2::text[]) = 0 OR status::text = ANY($2))
	AND ($3::timestamptz IS NULL OR created_at < $3)
ORDER BY created_at DESC, id
LIMIT $4
`

func (r *TransactionRepo) ListTransactions(ctx context.Context, opts repository.ListTransactionsOpts) ([]models.Transaction, error) {
	var (
		userID        *uuid.UUID
		createdBefore *time.Time
		limit         *int
	)
	if opts.UserID != uuid.Nil {
		userID = &opts.UserID
	}
	if !opts.CreatedBefore.IsZero() {
		createdBefore = &opts.CreatedBefore
	}
	if opts.Limit > 0 {
		limit = &opts.Limit
	}

	statuses := make([]string, 0, len(opts.Statuses))
	for _, s := range opts.Statuses {
		statuses = append(statuses, string(s))
	}

	rows, _ := r.DB.Query(ctx, listTransactions, userID, statuses, createdBefore, limit)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return transactions, nil
}

const updateTransactionState = `-- name: UpdateTransactionState
UPDATE transactions
SET status = $2, payment_status = $3, paid_at = $4, updated_at = now()
WHERE id = $1
RETURNING ` + transactionColumns

func (r *TransactionRepo) UpdateTransactionState(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, updateTransactionState, t.ID, string(t.Status), string(t.PaymentStatus), t.PaidAt)
	return collectTransaction(rows)
}

func collectTransaction(rows pgx.Rows) (models.Transaction, error) {
	t, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, pgx.ErrNoRows):
		return t, apperrors.ErrTransactionNotFound
	default:
		return t, fmt.Errorf("db error: %w", err)
	}
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var (
		t             models.Transaction
		status        string
		paymentStatus string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.SpbuID, &t.FuelType, &t.Quantity, &t.PricePerLiter, &t.TotalPrice,
		&status, &t.PaymentMethod, &paymentStatus, &t.CreatedAt, &t.UpdatedAt, &t.PaidAt,
	)
	t.Status = models.TransactionStatus(status)
	t.PaymentStatus = models.PaymentStatus(paymentStatus)
	return t, err
}
