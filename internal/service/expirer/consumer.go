package expirer

import (
	"context"
	"errors"
	"sync"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
)

type Consumer struct {
	countWorkers int

	service transactionService
	logger  logger.Logger
}

func (c *Consumer) Consume(ctx context.Context, in <-chan models.Transaction) <-chan struct{} {
	idleStopped := make(chan struct{})

	var wg sync.WaitGroup
	for range c.countWorkers {
		wg.Add(1)
		go func() {
			c.worker(ctx, in)
			wg.Done()
		}()
	}

	go func() {
		defer close(idleStopped)
		wg.Wait()
		c.logger.Debug("Consumer stopped")
	}()

	return idleStopped
}

func (c *Consumer) worker(ctx context.Context, in <-chan models.Transaction) {
	for {
		select {
		case <-ctx.Done():
			return

		case t, ok := <-in:
			if !ok {
				c.logger.Debug("Consumer worker stopped, input channel closed")
				return
			}

			err := c.service.Expire(ctx, t)
			switch {
			case err == nil:
			case errors.Is(err, apperrors.ErrTransactionInvalidState):
				// Paid, cancelled or already expired after it was listed
				c.logger.Debug("Transaction is not pending anymore", "transaction_id", t.ID)
			case ctx.Err() != nil:
				return
			default:
				c.logger.Error("Failed to expire transaction", "error", err, "transaction_id", t.ID)
			}
		}
	}
}
