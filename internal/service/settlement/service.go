package settlement

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
)

type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

// Apply settles the bill against the user's pending credits and persists the
// plan. The whole run is one transaction: the bill row and every candidate
// credit row are locked, consumed entries are flipped with a conditional
// update, and the bill totals are written together with them. Two settlements
// racing for the same user's credits serialize on the row locks; if one still
// observes a consumed entry it rolls back with ErrCreditConflict.
func (s *Service) Apply(ctx context.Context, billID uuid.UUID, userID uuid.UUID) (models.Bill, error) {
	var settled models.Bill

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		bill, err := st.Bill().GetBillForUpdate(ctx, billID, userID)
		if err != nil {
			return err
		}

		if bill.Status == models.BillPaid {
			return apperrors.ErrBillAlreadyPaid
		}
		settled = bill

		candidates, err := st.Credit().ListPendingForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		plan, err := Settle(bill.Amount, candidates)
		if err != nil {
			return err
		}

		if len(plan.Allocations) == 0 {
			return nil
		}

		for _, allocation := range plan.Allocations {
			if err := st.Credit().MarkApplied(ctx, allocation.CreditID, bill.ID); err != nil {
				return fmt.Errorf("consuming credit %s: %w", allocation.CreditID, err)
			}
		}

		settled, err = st.Bill().SettleBill(ctx, repository.SettleBillParams{
			BillID:         bill.ID,
			CreditsApplied: plan.TotalApplied,
			FinalAmount:    plan.Payable,
			FullyCovered:   plan.FullyCovered,
		})

		return err
	})

	if err != nil {
		return models.Bill{}, err
	}

	return settled, nil
}
