package generation

import (
	"context"
	"time"

	"github.com/AMICLONE1/powernetpro/internal/logger"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
	"github.com/AMICLONE1/powernetpro/internal/service/discom"
)

const (
	defaultCountWorkers = 4                // Number of workers to credit subscriptions
	defaultPollInterval = 15 * time.Minute // Interval for polling active subscriptions
)

type discomClient interface {
	GetGeneration(ctx context.Context, consumerNumber string, period string) (discom.GenerationReading, error)
}

// Processor turns DISCOM generation readings for active subscriptions into
// PENDING credit entries. Inserts are idempotent per (subscription, period),
// so re-polling the same period is harmless.
type Processor struct {
	consumer *Consumer
	producer *Producer
}

type Opts struct {
	CountWorkers int
	PollInterval time.Duration
}

func New(client discomClient, storage repository.Storage, logger logger.Logger, opts Opts) *Processor {
	if opts.CountWorkers == 0 {
		opts.CountWorkers = defaultCountWorkers
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = defaultPollInterval
	}

	return &Processor{
		consumer: &Consumer{
			countWorkers: opts.CountWorkers,
			client:       client,
			creditRepo:   storage.Credit(),
			logger:       logger,
		},
		producer: &Producer{
			interval: opts.PollInterval,
			subRepo:  storage.Subscription(),
			logger:   logger,
		},
	}
}

func (p *Processor) Process(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})

	subChan := make(chan models.Subscription)

	// Start producer to emit active subscriptions
	producerStopped := p.producer.Produce(ctx, subChan)

	// Start consumer to credit them
	consumerStopped := p.consumer.Consume(ctx, subChan)

	go func() {
		defer close(idleStopped)
		defer close(subChan)
		<-producerStopped
		<-consumerStopped
		p.consumer.logger.Debug("Generation processor stopped")
	}()

	return idleStopped
}

// CurrentPeriod is the billing period readings are requested for, e.g. "2026-08"
func CurrentPeriod(now time.Time) string {
	return now.Format("2006-01")
}
