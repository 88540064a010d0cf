package bill

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
	"github.com/AMICLONE1/powernetpro/internal/service/discom"
	"github.com/AMICLONE1/powernetpro/internal/service/payment"
)

// Settler persists a settlement plan for the bill
type Settler interface {
	Apply(ctx context.Context, billID uuid.UUID, userID uuid.UUID) (models.Bill, error)
}

type discomClient interface {
	FetchBill(ctx context.Context, consumerNumber string, discom string) (discom.ConsumerBill, error)
}

type paymentGateway interface {
	CreateOrder(ctx context.Context, billID uuid.UUID, amount decimal.Decimal) (payment.Order, error)
	VerifySignature(orderID string, paymentID string, signature string) bool
}

type BillService struct {
	storage repository.Storage
	settler Settler
	discom  discomClient
	gateway paymentGateway
}

func NewService(storage repository.Storage, settler Settler, discom discomClient, gateway paymentGateway) *BillService {
	return &BillService{
		storage: storage,
		settler: settler,
		discom:  discom,
		gateway: gateway,
	}
}

type CreateBillParams struct {
	BillNumber string
	Discom     string
	Amount     decimal.Decimal
	DueDate    time.Time
}

// CreateBill records a new bill and immediately settles it against the
// user's pending credits. Every bill source funnels through here, so the
// settlement semantics cannot drift between entry points.
func (s *BillService) CreateBill(ctx context.Context, userID uuid.UUID, params CreateBillParams) (models.Bill, error) {
	if params.Amount.IsNegative() {
		return models.Bill{}, apperrors.ErrInvalidAmount
	}

	bill, err := s.storage.Bill().CreateBill(ctx, repository.CreateBillParams{
		UserID:     userID,
		BillNumber: params.BillNumber,
		Discom:     params.Discom,
		Amount:     params.Amount,
		DueDate:    params.DueDate,
	})
	if err != nil {
		return models.Bill{}, err
	}

	return s.settler.Apply(ctx, bill.ID, userID)
}

// FetchBill pulls the user's outstanding bill from the DISCOM gateway,
// records it and settles it
func (s *BillService) FetchBill(ctx context.Context, userID uuid.UUID, consumerNumber string, discomName string) (models.Bill, error) {
	fetched, err := s.discom.FetchBill(ctx, consumerNumber, discomName)
	if err != nil {
		return models.Bill{}, fmt.Errorf("fetching bill from gateway: %w", err)
	}

	return s.CreateBill(ctx, userID, CreateBillParams{
		BillNumber: fetched.BillNumber,
		Discom:     fetched.Discom,
		Amount:     fetched.Amount,
		DueDate:    fetched.DueDate,
	})
}

type PayResult struct {
	Bill            models.Bill
	RequiresPayment bool

	// Gateway order to complete when RequiresPayment is set
	OrderID string
}

// PayBill settles the bill and decides what happens to the remainder.
// Fully covered bills end up PAID outright; otherwise a payment order is
// opened at the gateway for the payable amount and the caller completes it.
func (s *BillService) PayBill(ctx context.Context, userID uuid.UUID, billID uuid.UUID) (PayResult, error) {
	bill, err := s.settler.Apply(ctx, billID, userID)
	if err != nil {
		return PayResult{}, err
	}

	if bill.Status == models.BillPaid {
		return PayResult{Bill: bill}, nil
	}

	if bill.FinalAmount.IsZero() {
		// Zero-amount bill: nothing to route through the gateway
		bill, err = s.storage.Bill().MarkPaid(ctx, billID, userID)
		if err != nil {
			return PayResult{}, err
		}
		return PayResult{Bill: bill}, nil
	}

	order, err := s.gateway.CreateOrder(ctx, bill.ID, bill.FinalAmount)
	if err != nil {
		return PayResult{}, fmt.Errorf("creating payment order: %w", err)
	}

	return PayResult{
		Bill:            bill,
		RequiresPayment: true,
		OrderID:         order.ID,
	}, nil
}

// ConfirmPayment verifies the gateway callback signature and marks the bill PAID
func (s *BillService) ConfirmPayment(ctx context.Context, userID uuid.UUID, billID uuid.UUID, orderID string, paymentID string, signature string) (models.Bill, error) {
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		return models.Bill{}, apperrors.ErrPaymentInvalid
	}

	return s.storage.Bill().MarkPaid(ctx, billID, userID)
}

func (s *BillService) ListBills(ctx context.Context, userID uuid.UUID) ([]models.Bill, error) {
	return s.storage.Bill().ListBills(ctx, userID)
}
