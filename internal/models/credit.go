package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CreditPending = "PENDING"
	CreditApplied = "APPLIED"
)

// Reference type set on a credit entry when a bill consumes it
const CreditRefBill = "bill"

// CreditEntry is a unit of banked monetary value generated by the user's
// solar allocation. Amount is immutable once created; only Status and the
// Ref fields change, and only PENDING -> APPLIED.
type CreditEntry struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UserID    uuid.UUID
	Amount    decimal.Decimal
	Status    string

	// What consumed the entry, nil while PENDING
	RefID   *uuid.UUID
	RefType *string

	// Generation source, nil for entries granted outside the generation loop
	SubscriptionID *uuid.UUID
	SourcePeriod   *string
}

// CreditBalance is the aggregate over a user's ledger
type CreditBalance struct {
	Pending decimal.Decimal
	Applied decimal.Decimal
}
