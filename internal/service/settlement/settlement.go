package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/models"
)

// Allocation is one credit entry's contribution toward a bill.
// Amount may be smaller than the entry's value when the bill runs out first.
type Allocation struct {
	CreditID uuid.UUID
	Amount   decimal.Decimal
}

// Plan is the outcome of settling a bill amount against pending credits.
// It carries no side effects; Service.Apply persists it.
type Plan struct {
	Allocations  []Allocation
	TotalApplied decimal.Decimal
	Payable      decimal.Decimal
	FullyCovered bool
}

// Settle allocates pending credits against billAmount, consuming candidates
// in the order given (callers pass them oldest first). Each candidate
// contributes min(candidate.Amount, remaining); iteration stops as soon as
// the bill is covered, so later candidates are left untouched.
//
// A candidate that contributes anything is consumed whole: the ledger does
// not keep the unused remainder of a partially-needed entry. The Plan still
// records the true contribution, so the bill's books balance.
func Settle(billAmount decimal.Decimal, candidates []models.CreditEntry) (Plan, error) {
	if billAmount.IsNegative() {
		return Plan{}, apperrors.ErrInvalidAmount
	}

	plan := Plan{
		Allocations:  []Allocation{},
		TotalApplied: decimal.Zero,
		Payable:      billAmount,
		FullyCovered: billAmount.IsZero(),
	}

	remaining := billAmount
	for _, candidate := range candidates {
		if remaining.IsZero() {
			break
		}

		contribution := decimal.Min(candidate.Amount, remaining)
		if !contribution.IsPositive() {
			continue
		}

		plan.Allocations = append(plan.Allocations, Allocation{
			CreditID: candidate.ID,
			Amount:   contribution,
		})
		remaining = remaining.Sub(contribution)
	}

	plan.TotalApplied = billAmount.Sub(remaining)
	plan.Payable = remaining
	plan.FullyCovered = remaining.IsZero()

	return plan, nil
}
