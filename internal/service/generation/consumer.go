package generation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/logger"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
	"github.com/AMICLONE1/powernetpro/internal/service/discom"
)

type Consumer struct {
	countWorkers int

	// The DISCOM gateway may return rate-limit errors
	// If it does, workers wait until the time is up
	waitUntil atomic.Int64

	client     discomClient
	creditRepo repository.CreditRepo
	logger     logger.Logger
}

func (c *Consumer) Consume(ctx context.Context, in <-chan models.Subscription) <-chan struct{} {
	idleStopped := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < c.countWorkers; i++ {
		wg.Add(1)
		go func() {
			c.worker(ctx, in)
			wg.Done()
		}()
	}

	go func() {
		defer close(idleStopped)
		wg.Wait()
		c.logger.Debug("Generation consumer stopped")
	}()

	return idleStopped
}

func (c *Consumer) worker(ctx context.Context, in <-chan models.Subscription) {
	for {
		// Wait until rate limit is passed or context is done
		waitUntil := time.Unix(c.waitUntil.Load(), 0)
		if waitUntil.After(time.Now()) {
			c.logger.Debug("Worker is waiting for rate limit to reset", "wait_until", waitUntil)

			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Until(waitUntil)):
				c.logger.Debug("Worker finished waiting for rate limit to reset")
				continue
			}
		}

		select {
		case <-ctx.Done():
			return

		case sub, ok := <-in:
			if !ok {
				c.logger.Debug("Generation worker stopped, input channel closed")
				return
			}

			c.credit(ctx, sub)
		}
	}
}

func (c *Consumer) credit(ctx context.Context, sub models.Subscription) {
	period := CurrentPeriod(time.Now())

	reading, err := c.client.GetGeneration(ctx, sub.ConsumerNumber, period)
	var gwErr *discom.GatewayError

	switch {
	case err == nil:
		value := reading.CreditValue()
		if !value.IsPositive() {
			c.logger.Debug("Reading worth nothing, skipping", "subscription_id", sub.ID, "period", period)
			return
		}

		_, err := c.creditRepo.CreateCredit(ctx, repository.CreateCreditParams{
			UserID:         sub.UserID,
			Amount:         value,
			SubscriptionID: &sub.ID,
			SourcePeriod:   &period,
		})
		switch {
		case err == nil:
			c.logger.Info("Credit entry created", "subscription_id", sub.ID, "period", period, "amount", value)
		case errors.Is(err, apperrors.ErrCreditExists):
			c.logger.Debug("Period already credited", "subscription_id", sub.ID, "period", period)
		default:
			c.logger.Error("Failed to create credit entry", "error", err, "subscription_id", sub.ID)
		}

	case errors.As(err, &gwErr):
		switch gwErr.Code {
		case discom.CodeRetryAfter:
			c.logger.Info("Rate limit exceeded, waiting", "retry_after", gwErr.RetryAfter)
			c.waitUntil.Store(time.Now().Add(gwErr.RetryAfter).Unix())

		case discom.CodeNoBill:
			c.logger.Debug("No reading for period yet", "subscription_id", sub.ID, "period", period)

		default:
			c.logger.Error("Unknown error from DISCOM gateway", "error", err, "subscription_id", sub.ID)
		}

	default:
		c.logger.Error("unexpected error from DISCOM gateway", "error", err, "subscription_id", sub.ID)
	}
}
