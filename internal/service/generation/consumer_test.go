package generation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/logger"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
	"github.com/AMICLONE1/powernetpro/internal/service/discom"
)

type stubDiscom struct {
	reading discom.GenerationReading
	err     error

	mu       sync.Mutex
	requests []string
}

func (s *stubDiscom) GetGeneration(_ context.Context, consumerNumber string, period string) (discom.GenerationReading, error) {
	s.mu.Lock()
	s.requests = append(s.requests, consumerNumber+" "+period)
	s.mu.Unlock()
	return s.reading, s.err
}

type stubCreditRepo struct {
	repository.CreditRepo

	err error

	mu      sync.Mutex
	created []repository.CreateCreditParams
}

func (s *stubCreditRepo) CreateCredit(_ context.Context, arg repository.CreateCreditParams) (models.CreditEntry, error) {
	s.mu.Lock()
	s.created = append(s.created, arg)
	s.mu.Unlock()
	return models.CreditEntry{}, s.err
}

// Run consumer with one worker, feed it the subscriptions and stop
func consume(t *testing.T, client *stubDiscom, repo *stubCreditRepo, subs ...models.Subscription) {
	t.Helper()

	consumer := &Consumer{
		countWorkers: 1,
		client:       client,
		creditRepo:   repo,
		logger:       logger.NewNoOpLogger(),
	}

	in := make(chan models.Subscription)
	stopped := consumer.Consume(t.Context(), in)

	for _, sub := range subs {
		in <- sub
	}
	close(in)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop in time")
	}
}

func TestConsumer(t *testing.T) {
	t.Parallel()

	sub := models.Subscription{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		ConsumerNumber: "CN-42",
		Status:         models.SubscriptionActive,
	}

	t.Run("credits the reading value", func(t *testing.T) {
		client := &stubDiscom{reading: discom.GenerationReading{
			UnitsKWh: decimal.RequireFromString("100"),
			Rate:     decimal.RequireFromString("4.20"),
		}}
		repo := &stubCreditRepo{}

		consume(t, client, repo, sub)

		require.Len(t, client.requests, 1)
		require.Equal(t, "CN-42 "+CurrentPeriod(time.Now()), client.requests[0])

		require.Len(t, repo.created, 1)
		created := repo.created[0]
		require.Equal(t, sub.UserID, created.UserID)
		require.True(t, created.Amount.Equal(decimal.RequireFromString("420")))
		require.Equal(t, sub.ID, *created.SubscriptionID)
		require.Equal(t, CurrentPeriod(time.Now()), *created.SourcePeriod)
	})

	t.Run("worthless reading is skipped", func(t *testing.T) {
		client := &stubDiscom{reading: discom.GenerationReading{
			UnitsKWh: decimal.Zero,
			Rate:     decimal.RequireFromString("4.20"),
		}}
		repo := &stubCreditRepo{}

		consume(t, client, repo, sub)

		require.Empty(t, repo.created, "zero-value readings must not create entries")
	})

	t.Run("already credited period is tolerated", func(t *testing.T) {
		client := &stubDiscom{reading: discom.GenerationReading{
			UnitsKWh: decimal.RequireFromString("100"),
			Rate:     decimal.RequireFromString("4.20"),
		}}
		repo := &stubCreditRepo{err: apperrors.ErrCreditExists}

		// Both subscriptions processed even though every insert "fails"
		consume(t, client, repo, sub, sub)

		require.Len(t, repo.created, 2)
	})

	t.Run("no reading yet is tolerated", func(t *testing.T) {
		client := &stubDiscom{err: discom.NewGatewayError(discom.CodeNoBill, 0, nil)}
		repo := &stubCreditRepo{}

		consume(t, client, repo, sub)

		require.Empty(t, repo.created)
	})

	t.Run("rate limit makes workers wait", func(t *testing.T) {
		client := &stubDiscom{err: discom.NewGatewayError(discom.CodeRetryAfter, 120, nil)}
		repo := &stubCreditRepo{}

		consumer := &Consumer{
			countWorkers: 1,
			client:       client,
			creditRepo:   repo,
			logger:       logger.NewNoOpLogger(),
		}

		ctx, cancel := context.WithCancel(t.Context())
		in := make(chan models.Subscription, 1)
		in <- sub
		stopped := consumer.Consume(ctx, in)

		require.Eventually(t, func() bool {
			return time.Unix(consumer.waitUntil.Load(), 0).After(time.Now())
		}, 5*time.Second, 10*time.Millisecond, "throttle deadline should be set in the future")

		cancel()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			t.Fatal("consumer did not stop in time")
		}
	})
}

func TestCurrentPeriod(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2026-08", CurrentPeriod(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)))
	require.Equal(t, "2026-01", CurrentPeriod(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}
