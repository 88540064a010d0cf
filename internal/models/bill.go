package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BillPending = "PENDING"
	BillPaid    = "PAID"
)

// Bill sources
const (
	BillSourceManual = "manual"
	BillSourceFetch  = "fetch"
)

// Invariant: FinalAmount = max(0, Amount - CreditsApplied)
type Bill struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UserID         uuid.UUID
	BillNumber     string
	Discom         string
	Amount         decimal.Decimal
	CreditsApplied decimal.Decimal
	FinalAmount    decimal.Decimal
	Status         string
	DueDate        time.Time
	PaidAt         *time.Time // nil until the bill is PAID
}
