package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionSuspended = "SUSPENDED"
)

// Subscription is a user's reserved share of a solar project. The generation
// loop turns readings for active subscriptions into credit entries.
type Subscription struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UserID         uuid.UUID
	Project        string
	CapacityKW     decimal.Decimal
	ConsumerNumber string
	Discom         string
	Status         string
}
