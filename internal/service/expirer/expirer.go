// Package expirer cancels transactions left pending for too long.
package expirer

import (
	"context"
	"time"

	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
)

const (
	defaultCountWorkers    = 4           // Number of workers expiring transactions
	defaultProduceInterval = time.Minute // Interval for looking up stale transactions
	defaultBatchSize       = 100         // Max stale transactions fetched per tick
)

type transactionService interface {
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error)
	Expire(ctx context.Context, t models.Transaction) error
}

type Config struct {
	// Transactions pending longer than TTL are cancelled
	TTL time.Duration

	Interval     time.Duration
	CountWorkers int
	BatchSize    int
}

type Expirer struct {
	consumer *Consumer
	producer *Producer
	logger   logger.Logger
}

func New(cfg Config, service transactionService, logger logger.Logger) *Expirer {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultProduceInterval
	}
	if cfg.CountWorkers <= 0 {
		cfg.CountWorkers = defaultCountWorkers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	return &Expirer{
		consumer: &Consumer{
			countWorkers: cfg.CountWorkers,
			service:      service,
			logger:       logger,
		},
		producer: &Producer{
			ttl:       cfg.TTL,
			interval:  cfg.Interval,
			batchSize: cfg.BatchSize,
			service:   service,
			logger:    logger,
		},
		logger: logger,
	}
}

// Run expirer until ctx is done
// Returned channel is closed when producer and all workers stopped
func (e *Expirer) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})

	staleChan := make(chan models.Transaction)

	producerStopped := e.producer.Produce(ctx, staleChan)
	consumerStopped := e.consumer.Consume(ctx, staleChan)

	go func() {
		defer close(idleStopped)
		defer close(staleChan)
		<-producerStopped
		<-consumerStopped
		e.logger.Debug("Expirer stopped")
	}()

	return idleStopped
}
