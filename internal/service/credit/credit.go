package credit

import (
	"context"

	"github.com/google/uuid"

	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
)

type CreditService struct {
	creditRepo repository.CreditRepo
}

func NewService(creditRepo repository.CreditRepo) *CreditService {
	return &CreditService{creditRepo: creditRepo}
}

func (s *CreditService) ListCredits(ctx context.Context, userID uuid.UUID) ([]models.CreditEntry, error) {
	return s.creditRepo.ListCredits(ctx, userID)
}

func (s *CreditService) GetBalance(ctx context.Context, userID uuid.UUID) (models.CreditBalance, error) {
	return s.creditRepo.GetBalance(ctx, userID)
}
