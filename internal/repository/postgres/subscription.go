package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
)

type SubscriptionRepo struct {
	DB DBTX
}

const createSubscription = `-- name: CreateSubscription
INSERT INTO subscriptions (id, created_at, user_id, project, capacity_kw, consumer_number, discom, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, user_id, project, capacity_kw, consumer_number, discom, status
`

func (r *SubscriptionRepo) CreateSubscription(ctx context.Context, arg repository.CreateSubscriptionParams) (models.Subscription, error) {
	rows, _ := r.DB.Query(ctx, createSubscription,
		uuid.New(), time.Now(), arg.UserID, arg.Project, arg.CapacityKW, arg.ConsumerNumber, arg.Discom, models.SubscriptionActive,
	)
	sub, err := pgx.CollectOneRow(rows, rowToSubscription)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return sub, apperrors.ErrSubscriptionExists
		}

		return sub, fmt.Errorf("db error: %w", err)
	}

	return sub, nil
}

const listActiveSubscriptions = `-- name: ListActive
SELECT id, created_at, user_id, project, capacity_kw, consumer_number, discom, status
FROM subscriptions
WHERE status = $1
ORDER BY created_at ASC
`

func (r *SubscriptionRepo) ListActive(ctx context.Context) ([]models.Subscription, error) {
	rows, _ := r.DB.Query(ctx, listActiveSubscriptions, models.SubscriptionActive)
	subs, err := pgx.CollectRows(rows, rowToSubscription)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return subs, nil
}

const listUserSubscriptions = `-- name: ListSubscriptions
SELECT id, created_at, user_id, project, capacity_kw, consumer_number, discom, status
FROM subscriptions
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *SubscriptionRepo) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	rows, _ := r.DB.Query(ctx, listUserSubscriptions, userID)
	subs, err := pgx.CollectRows(rows, rowToSubscription)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return subs, nil
}

func rowToSubscription(row pgx.CollectableRow) (models.Subscription, error) {
	var s models.Subscription
	err := row.Scan(&s.ID, &s.CreatedAt, &s.UserID, &s.Project, &s.CapacityKW, &s.ConsumerNumber, &s.Discom, &s.Status)
	return s, err
}
