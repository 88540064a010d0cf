package generation

import (
	"context"
	"time"

	"github.com/AMICLONE1/powernetpro/internal/logger"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
)

type Producer struct {
	interval time.Duration
	logger   logger.Logger
	subRepo  repository.SubscriptionRepo
}

func (p *Producer) Produce(ctx context.Context, out chan<- models.Subscription) <-chan struct{} {
	idleStopped := make(chan struct{})
	p.logger.Debug("Starting generation producer", "interval", p.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Debug("Generation producer stopped by context")
				return

			case <-ticker.C:
				p.logger.Debug("Generation producer tick: listing active subscriptions")

				subs, err := p.subRepo.ListActive(ctx)
				if err != nil {
					p.logger.Error("Failed to list active subscriptions", "error", err)
					continue
				}

				// Send subscriptions to the output channel
				for _, sub := range subs {
					select {
					case <-ctx.Done():
						p.logger.Debug("Generation producer stopped by context while sending")
						return
					case out <- sub:
						p.logger.Debug("Subscription sent to channel", "subscription_id", sub.ID)
					}
				}
			}
		}
	}()

	return idleStopped
}
