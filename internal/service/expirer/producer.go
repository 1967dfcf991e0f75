package expirer

import (
	"context"
	"time"

	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
)

type Producer struct {
	ttl       time.Duration
	interval  time.Duration
	batchSize int
	service   transactionService
	logger    logger.Logger
}

func (p *Producer) Produce(ctx context.Context, out chan<- models.Transaction) <-chan struct{} {
	idleStopped := make(chan struct{})
	p.logger.Debug("Starting producer", "ttl", p.ttl, "interval", p.interval, "batch_size", p.batchSize)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Debug("Producer stopped by context")
				return

			case <-ticker.C:
				cutoff := time.Now().Add(-p.ttl)
				stale, err := p.service.ListStale(ctx, cutoff, p.batchSize)
				if err != nil {
					p.logger.Error("Failed to list stale transactions", "error", err)
					continue
				}
				if len(stale) > 0 {
					p.logger.Debug("Found stale transactions", "count", len(stale), "cutoff", cutoff)
				}

				for _, t := range stale {
					select {
					case <-ctx.Done():
						p.logger.Debug("Producer stopped by context while sending transactions")
						return
					case out <- t:
					}
				}
			}
		}
	}()

	return idleStopped
}
