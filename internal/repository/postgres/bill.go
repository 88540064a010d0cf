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

type BillRepo struct {
	DB DBTX
}

const createBill = `-- name: CreateBill
INSERT INTO bills (id, created_at, user_id, bill_number, discom, amount, credits_applied, final_amount, status, due_date, paid_at)
VALUES ($1, $2, $3, $4, $5, $6, 0, $6, $7, $8, NULL)
RETURNING id, created_at, user_id, bill_number, discom, amount, credits_applied, final_amount, status, due_date, paid_at
`

func (r *BillRepo) CreateBill(ctx context.Context, arg repository.CreateBillParams) (models.Bill, error) {
	rows, _ := r.DB.Query(ctx, createBill,
		uuid.New(), time.Now(), arg.UserID, arg.BillNumber, arg.Discom, arg.Amount, models.BillPending, arg.DueDate,
	)
	bill, err := pgx.CollectOneRow(rows, rowToBill)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return bill, apperrors.ErrBillExists
		}

		return bill, fmt.Errorf("db error: %w", err)
	}

	return bill, nil
}

const getBill = `-- name: GetBill
SELECT id, created_at, user_id, bill_number, discom, amount, credits_applied, final_amount, status, due_date, paid_at
FROM bills
WHERE id = $1 AND user_id = $2
`

func (r *BillRepo) GetBill(ctx context.Context, billID uuid.UUID, userID uuid.UUID) (models.Bill, error) {
	rows, _ := r.DB.Query(ctx, getBill, billID, userID)
	return collectBill(rows)
}

// Same row, locked. The lock orders concurrent settlements of one bill.
const getBillForUpdate = getBill + `FOR UPDATE`

func (r *BillRepo) GetBillForUpdate(ctx context.Context, billID uuid.UUID, userID uuid.UUID) (models.Bill, error) {
	rows, _ := r.DB.Query(ctx, getBillForUpdate, billID, userID)
	return collectBill(rows)
}

const settleBill = `-- name: SettleBill
UPDATE bills
SET credits_applied = $2,
    final_amount = $3,
    status = $4,
    paid_at = $5
WHERE id = $1
RETURNING id, created_at, user_id, bill_number, discom, amount, credits_applied, final_amount, status, due_date, paid_at
`

func (r *BillRepo) SettleBill(ctx context.Context, arg repository.SettleBillParams) (models.Bill, error) {
	status := models.BillPending
	var paidAt *time.Time
	if arg.FullyCovered {
		status = models.BillPaid
		now := time.Now()
		paidAt = &now
	}

	rows, _ := r.DB.Query(ctx, settleBill, arg.BillID, arg.CreditsApplied, arg.FinalAmount, status, paidAt)
	return collectBill(rows)
}

const markBillPaid = `-- name: MarkPaid if still pending
UPDATE bills
SET status = $3, paid_at = $4
WHERE id = $1 AND user_id = $2 AND status = $5
RETURNING id, created_at, user_id, bill_number, discom, amount, credits_applied, final_amount, status, due_date, paid_at
`

func (r *BillRepo) MarkPaid(ctx context.Context, billID uuid.UUID, userID uuid.UUID) (models.Bill, error) {
	rows, _ := r.DB.Query(ctx, markBillPaid, billID, userID, models.BillPaid, time.Now(), models.BillPending)
	bill, err := pgx.CollectOneRow(rows, rowToBill)

	switch {
	case err == nil:
		return bill, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Either absent or not PENDING; tell which one
		bill, getErr := r.GetBill(ctx, billID, userID)
		if getErr != nil {
			return bill, getErr
		}
		return bill, apperrors.ErrBillAlreadyPaid
	default:
		return bill, fmt.Errorf("db error: %w", err)
	}
}

const listBills = `-- name: ListBills
SELECT id, created_at, user_id, bill_number, discom, amount, credits_applied, final_amount, status, due_date, paid_at
FROM bills
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *BillRepo) ListBills(ctx context.Context, userID uuid.UUID) ([]models.Bill, error) {
	rows, _ := r.DB.Query(ctx, listBills, userID)
	bills, err := pgx.CollectRows(rows, rowToBill)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return bills, nil
}

func collectBill(rows pgx.Rows) (models.Bill, error) {
	bill, err := pgx.CollectOneRow(rows, rowToBill)

	switch {
	case err == nil:
		return bill, nil
	case errors.Is(err, pgx.ErrNoRows):
		return bill, apperrors.ErrBillNotFound
	default:
		return bill, fmt.Errorf("db error: %w", err)
	}
}

func rowToBill(row pgx.CollectableRow) (models.Bill, error) {
	var b models.Bill
	err := row.Scan(&b.ID, &b.CreatedAt, &b.UserID, &b.BillNumber, &b.Discom, &b.Amount, &b.CreditsApplied, &b.FinalAmount, &b.Status, &b.DueDate, &b.PaidAt)
	return b, err
}
