package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AMICLONE1/powernetpro/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the token if it exists in the database
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Mark token as used
	// If the token is already used, must not overwrite the existing 'usedAt'
	// and must return apperrors.ErrRefreshTokenIsUsed
	MarkUsed(ctx context.Context, tokenString string) (usedAt time.Time, err error)
}

type CreateBillParams struct {
	UserID     uuid.UUID
	BillNumber string
	Discom     string
	Amount     decimal.Decimal
	DueDate    time.Time
}

type SettleBillParams struct {
	BillID         uuid.UUID
	CreditsApplied decimal.Decimal
	FinalAmount    decimal.Decimal
	FullyCovered   bool
}

// Bill repository interface
type BillRepo interface {
	// Create bill in PENDING status with final_amount = amount
	// Duplicate (user, bill_number, discom) must return apperrors.ErrBillExists
	CreateBill(ctx context.Context, arg CreateBillParams) (models.Bill, error)

	// Get user's bill; apperrors.ErrBillNotFound if absent or owned by someone else
	GetBill(ctx context.Context, billID uuid.UUID, userID uuid.UUID) (models.Bill, error)

	// Same as GetBill but takes a row lock, to be used inside a transaction
	GetBillForUpdate(ctx context.Context, billID uuid.UUID, userID uuid.UUID) (models.Bill, error)

	// Persist a settlement plan on the bill; sets PAID and paid_at when fully covered
	SettleBill(ctx context.Context, arg SettleBillParams) (models.Bill, error)

	// Mark bill PAID after external payment confirmation
	// Must return apperrors.ErrBillAlreadyPaid if it is not PENDING anymore
	MarkPaid(ctx context.Context, billID uuid.UUID, userID uuid.UUID) (models.Bill, error)

	// User's bills newest first
	ListBills(ctx context.Context, userID uuid.UUID) ([]models.Bill, error)
}

type CreateCreditParams struct {
	UserID uuid.UUID
	Amount decimal.Decimal

	// Set for credits produced by the generation loop; the pair
	// (SubscriptionID, SourcePeriod) is unique and makes inserts idempotent
	SubscriptionID *uuid.UUID
	SourcePeriod   *string
}

// Credit ledger repository interface
type CreditRepo interface {
	// Create PENDING credit entry
	// Duplicate (subscription, period) must return apperrors.ErrCreditExists
	CreateCredit(ctx context.Context, arg CreateCreditParams) (models.CreditEntry, error)

	// User's PENDING entries oldest first, rows locked for the transaction
	ListPendingForUpdate(ctx context.Context, userID uuid.UUID) ([]models.CreditEntry, error)

	// Flip entry PENDING -> APPLIED referencing the consuming bill
	// Must return apperrors.ErrCreditConflict if the entry is not PENDING
	MarkApplied(ctx context.Context, creditID uuid.UUID, billID uuid.UUID) error

	// User's entries newest first
	ListCredits(ctx context.Context, userID uuid.UUID) ([]models.CreditEntry, error)

	// Pending and applied totals over the user's ledger
	GetBalance(ctx context.Context, userID uuid.UUID) (models.CreditBalance, error)
}

type CreateSubscriptionParams struct {
	UserID         uuid.UUID
	Project        string
	CapacityKW     decimal.Decimal
	ConsumerNumber string
	Discom         string
}

// Subscription repository interface
type SubscriptionRepo interface {
	// Duplicate (user, consumer_number, discom) must return apperrors.ErrSubscriptionExists
	CreateSubscription(ctx context.Context, arg CreateSubscriptionParams) (models.Subscription, error)

	// All ACTIVE subscriptions, any user; used by the generation producer
	ListActive(ctx context.Context) ([]models.Subscription, error)

	// User's subscriptions newest first
	ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
}

// Storage bundles repositories over a single database handle.
// InTx runs fn against repositories bound to one transaction.
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Bill() BillRepo
	Credit() CreditRepo
	Subscription() SubscriptionRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}
