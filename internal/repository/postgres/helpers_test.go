package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/numeric"
	"github.com/nkiryanov/spbuhub/internal/repository"
	"github.com/nkiryanov/spbuhub/internal/testutil"
)

// Create transaction and storage on the transaction
// May be called several times (aka transaction in transaction)
func inTx(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
	testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
		fn(innerTx, NewStorage(innerTx))
	})
}

func mustCreateUser(t *testing.T, s repository.Storage, email string) models.User {
	t.Helper()

	user, err := s.User().CreateUser(t.Context(), models.User{Name: "User " + email, Email: email, HashedPassword: "hash"})
	require.NoError(t, err)
	return user
}

func mustCreateSpbu(t *testing.T, s repository.Storage, name string) models.Spbu {
	t.Helper()

	spbu, err := s.Spbu().CreateSpbu(t.Context(), models.Spbu{Name: name, Address: "Jl. Sudirman " + uuid.NewString()[:4]})
	require.NoError(t, err)
	return spbu
}

func mustSetPrice(t *testing.T, s repository.Storage, spbuID uuid.UUID, fuelType string, price string) models.FuelPrice {
	t.Helper()

	fp, err := s.FuelPrice().UpsertFuelPrice(t.Context(), spbuID, fuelType, numeric.MustParse(price))
	require.NoError(t, err)
	return fp
}

// Pending 10.5 liters of pertamax at 10000.00
func newTransaction(userID, spbuID uuid.UUID) models.Transaction {
	return models.Transaction{
		UserID:        userID,
		SpbuID:        spbuID,
		FuelType:      "pertamax",
		Quantity:      numeric.MustParse("10.5"),
		PricePerLiter: numeric.MustParse("10000.00"),
		TotalPrice:    numeric.MustParse("105000.00"),
		PaymentMethod: "qris",
	}
}
