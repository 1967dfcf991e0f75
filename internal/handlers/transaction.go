package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/handlers/render"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/numeric"
	"github.com/nkiryanov/spbuhub/internal/service/transaction"
)

// Decimals are rendered as strings with their scale: "105000.00"
type transactionResponse struct {
	ID            uuid.UUID                `json:"id"`
	UserID        uuid.UUID                `json:"user_id"`
	SpbuID        uuid.UUID                `json:"spbu_id"`
	FuelType      string                   `json:"fuel_type"`
	Quantity      numeric.Decimal          `json:"quantity"`
	PricePerLiter numeric.Decimal          `json:"price_per_liter"`
	TotalPrice    numeric.Decimal          `json:"total_price"`
	Status        models.TransactionStatus `json:"status"`
	PaymentMethod string                   `json:"payment_method"`
	PaymentStatus models.PaymentStatus     `json:"payment_status"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	PaidAt        *time.Time               `json:"paid_at"`
}

func newTransactionResponse(t models.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		SpbuID:        t.SpbuID,
		FuelType:      t.FuelType,
		Quantity:      t.Quantity,
		PricePerLiter: t.PricePerLiter,
		TotalPrice:    t.TotalPrice,
		Status:        t.Status,
		PaymentMethod: t.PaymentMethod,
		PaymentStatus: t.PaymentStatus,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		PaidAt:        t.PaidAt,
	}
}

func handleCreateTransaction(transactions transactionService, l logger.Logger) http.Handler {
	type request struct {
		SpbuID        uuid.UUID       `json:"spbu_id" validate:"required"`
		FuelType      string          `json:"fuel_type" validate:"fueltype"`
		Quantity      numeric.Decimal `json:"quantity" validate:"decimal_gt0"`
		PaymentMethod string          `json:"payment_method" validate:"required,max=32"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		t, err := transactions.Create(r.Context(), me.UserID, transaction.Purchase{
			SpbuID:        data.SpbuID,
			FuelType:      data.FuelType,
			Quantity:      data.Quantity,
			PaymentMethod: data.PaymentMethod,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, newTransactionResponse(t), http.StatusCreated)
	})
}

func handleListTransactions(transactions transactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}

		list, err := transactions.List(r.Context(), me.UserID)
		if err != nil {
			renderError(w, err, l)
			return
		}

		res := make([]transactionResponse, 0, len(list))
		for _, t := range list {
			res = append(res, newTransactionResponse(t))
		}
		render.JSON(w, res)
	})
}

type transactionAction func(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Transaction, error)

// Serve operation on single transaction of the caller: get, cancel or pay
func handleTransactionAction(action transactionAction, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		t, err := action(r.Context(), me.UserID, id)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newTransactionResponse(t))
	})
}
