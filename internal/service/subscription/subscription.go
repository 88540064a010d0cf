package subscription

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
)

type consumerValidator interface {
	ValidateConsumer(ctx context.Context, consumerNumber string, discom string) error
}

type SubscriptionService struct {
	subRepo   repository.SubscriptionRepo
	validator consumerValidator
}

func NewService(subRepo repository.SubscriptionRepo, validator consumerValidator) *SubscriptionService {
	return &SubscriptionService{
		subRepo:   subRepo,
		validator: validator,
	}
}

type ReserveParams struct {
	Project        string
	CapacityKW     decimal.Decimal
	ConsumerNumber string
	Discom         string
}

// Reserve allocates project capacity to the user. The consumer number is
// validated against the DISCOM before anything is written.
func (s *SubscriptionService) Reserve(ctx context.Context, userID uuid.UUID, params ReserveParams) (models.Subscription, error) {
	if err := s.validator.ValidateConsumer(ctx, params.ConsumerNumber, params.Discom); err != nil {
		return models.Subscription{}, fmt.Errorf("validating consumer: %w", err)
	}

	return s.subRepo.CreateSubscription(ctx, repository.CreateSubscriptionParams{
		UserID:         userID,
		Project:        params.Project,
		CapacityKW:     params.CapacityKW,
		ConsumerNumber: params.ConsumerNumber,
		Discom:         params.Discom,
	})
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	return s.subRepo.ListSubscriptions(ctx, userID)
}
