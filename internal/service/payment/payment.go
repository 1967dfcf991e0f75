// Package payment charges fuel transactions through a payment gateway.
package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/numeric"
)

type Charge struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Amount        numeric.Decimal `json:"amount"`
	Method        string          `json:"method"`
}

// Result of a charge the gateway processed
// Declined charge is a result, not an error
type Result struct {
	Approved  bool
	Reference string
	Reason    string
}

type Gateway interface {
	Charge(ctx context.Context, charge Charge) (Result, error)
}

// Simulated gateway approves every charge
// Used when no real gateway address is configured
type Simulated struct{}

func (Simulated) Charge(ctx context.Context, charge Charge) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{Approved: true, Reference: "sim-" + charge.TransactionID.String()}, nil
}
