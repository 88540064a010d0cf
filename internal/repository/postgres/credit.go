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

type CreditRepo struct {
	DB DBTX
}

const createCredit = `-- name: CreateCredit
INSERT INTO credit_entries (id, created_at, user_id, amount, status, subscription_id, source_period)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, user_id, amount, status, ref_id, ref_type, subscription_id, source_period
`

func (r *CreditRepo) CreateCredit(ctx context.Context, arg repository.CreateCreditParams) (models.CreditEntry, error) {
	rows, _ := r.DB.Query(ctx, createCredit,
		uuid.New(), time.Now(), arg.UserID, arg.Amount, models.CreditPending, arg.SubscriptionID, arg.SourcePeriod,
	)
	entry, err := pgx.CollectOneRow(rows, rowToCredit)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return entry, apperrors.ErrCreditExists
		}

		return entry, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

// Oldest first is the consumption order and must stay stable; the row locks
// serialize concurrent settlements for the same user
const listPendingForUpdate = `-- name: ListPendingForUpdate
SELECT id, created_at, user_id, amount, status, ref_id, ref_type, subscription_id, source_period
FROM credit_entries
WHERE user_id = $1 AND status = $2
ORDER BY created_at ASC
FOR UPDATE
`

func (r *CreditRepo) ListPendingForUpdate(ctx context.Context, userID uuid.UUID) ([]models.CreditEntry, error) {
	rows, _ := r.DB.Query(ctx, listPendingForUpdate, userID, models.CreditPending)
	entries, err := pgx.CollectRows(rows, rowToCredit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

const markCreditApplied = `-- name: MarkApplied only if still pending
UPDATE credit_entries
SET status = $3, ref_id = $2, ref_type = $4
WHERE id = $1 AND status = $5
`

func (r *CreditRepo) MarkApplied(ctx context.Context, creditID uuid.UUID, billID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, markCreditApplied, creditID, billID, models.CreditApplied, models.CreditRefBill, models.CreditPending)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrCreditConflict
	}

	return nil
}

const listCredits = `-- name: ListCredits
SELECT id, created_at, user_id, amount, status, ref_id, ref_type, subscription_id, source_period
FROM credit_entries
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *CreditRepo) ListCredits(ctx context.Context, userID uuid.UUID) ([]models.CreditEntry, error) {
	rows, _ := r.DB.Query(ctx, listCredits, userID)
	entries, err := pgx.CollectRows(rows, rowToCredit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

const getCreditBalance = `-- name: GetBalance
SELECT
	COALESCE(SUM(amount) FILTER (WHERE status = $2), 0),
	COALESCE(SUM(amount) FILTER (WHERE status = $3), 0)
FROM credit_entries
WHERE user_id = $1
`

func (r *CreditRepo) GetBalance(ctx context.Context, userID uuid.UUID) (models.CreditBalance, error) {
	var b models.CreditBalance
	err := r.DB.QueryRow(ctx, getCreditBalance, userID, models.CreditPending, models.CreditApplied).Scan(&b.Pending, &b.Applied)
	if err != nil {
		return b, fmt.Errorf("db error: %w", err)
	}

	return b, nil
}

func rowToCredit(row pgx.CollectableRow) (models.CreditEntry, error) {
	var c models.CreditEntry
	err := row.Scan(&c.ID, &c.CreatedAt, &c.UserID, &c.Amount, &c.Status, &c.RefID, &c.RefType, &c.SubscriptionID, &c.SourcePeriod)
	return c, err
}
