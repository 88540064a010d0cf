package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/handlers/render"
	"github.com/AMICLONE1/powernetpro/internal/handlers/userctx"
	"github.com/AMICLONE1/powernetpro/internal/logger"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/service/bill"
)

type billResponse struct {
	ID             uuid.UUID  `json:"id"`
	BillNumber     string     `json:"bill_number"`
	Discom         string     `json:"discom"`
	Amount         float64    `json:"amount"`
	CreditsApplied float64    `json:"credits_applied"`
	FinalAmount    float64    `json:"final_amount"`
	Status         string     `json:"status"`
	DueDate        time.Time  `json:"due_date"`
	CreatedAt      time.Time  `json:"created_at"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

func toBillResponse(b models.Bill) billResponse {
	amount, _ := b.Amount.Float64()
	applied, _ := b.CreditsApplied.Float64()
	final, _ := b.FinalAmount.Float64()

	return billResponse{
		ID:             b.ID,
		BillNumber:     b.BillNumber,
		Discom:         b.Discom,
		Amount:         amount,
		CreditsApplied: applied,
		FinalAmount:    final,
		Status:         b.Status,
		DueDate:        b.DueDate,
		CreatedAt:      b.CreatedAt,
		PaidAt:         b.PaidAt,
	}
}

// renderBillError maps settlement path errors to envelope codes
func renderBillError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidAmount):
		render.Error(w, render.CodeValidation, "Amount must not be negative", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrBillExists):
		render.Error(w, render.CodeBillExists, "Bill already exists", http.StatusConflict)
	case errors.Is(err, apperrors.ErrBillNotFound):
		render.Error(w, render.CodeBillNotFound, "Bill not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrBillAlreadyPaid):
		render.Error(w, render.CodeAlreadyPaid, "Bill is already paid", http.StatusConflict)
	case errors.Is(err, apperrors.ErrCreditConflict):
		render.Error(w, render.CodeDBError, "Concurrent settlement, try again", http.StatusConflict)
	case errors.Is(err, apperrors.ErrPaymentInvalid):
		render.Error(w, render.CodePaymentInvalid, "Payment signature verification failed", http.StatusBadRequest)
	default:
		l.Error("Bill operation failed", "error", err)
		render.Error(w, render.CodeServerError, "Internal server error", http.StatusInternalServerError)
	}
}

func handleCreateBill(billService billService, l logger.Logger) http.Handler {
	type request struct {
		BillNumber string          `json:"bill_number" validate:"required,max=64"`
		Discom     string          `json:"discom" validate:"required,max=64"`
		Amount     decimal.Decimal `json:"amount"`
		DueDate    time.Time       `json:"due_date" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, render.CodeServerError, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		settled, err := billService.CreateBill(r.Context(), user.ID, bill.CreateBillParams{
			BillNumber: data.BillNumber,
			Discom:     data.Discom,
			Amount:     data.Amount,
			DueDate:    data.DueDate,
		})
		if err != nil {
			renderBillError(w, l, err)
			return
		}

		render.JSONWithStatus(w, toBillResponse(settled), http.StatusCreated)
	})
}

func handleFetchBill(billService billService, l logger.Logger) http.Handler {
	type request struct {
		ConsumerNumber string `json:"consumer_number" validate:"required,max=64"`
		Discom         string `json:"discom" validate:"required,max=64"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, render.CodeServerError, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		settled, err := billService.FetchBill(r.Context(), user.ID, data.ConsumerNumber, data.Discom)
		if err != nil {
			renderBillError(w, l, err)
			return
		}

		render.JSONWithStatus(w, toBillResponse(settled), http.StatusCreated)
	})
}

func handlePayBill(billService billService, l logger.Logger) http.Handler {
	type request struct {
		BillID uuid.UUID `json:"bill_id" validate:"required"`
	}
	type response struct {
		Bill            billResponse `json:"bill"`
		RequiresPayment bool         `json:"requires_payment"`
		FinalAmount     float64      `json:"final_amount"`
		OrderID         string       `json:"order_id,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, render.CodeServerError, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		result, err := billService.PayBill(r.Context(), user.ID, data.BillID)
		if err != nil {
			renderBillError(w, l, err)
			return
		}

		final, _ := result.Bill.FinalAmount.Float64()
		render.JSON(w, response{
			Bill:            toBillResponse(result.Bill),
			RequiresPayment: result.RequiresPayment,
			FinalAmount:     final,
			OrderID:         result.OrderID,
		})
	})
}

func handleVerifyPayment(billService billService, l logger.Logger) http.Handler {
	type request struct {
		BillID    uuid.UUID `json:"bill_id" validate:"required"`
		OrderID   string    `json:"order_id" validate:"required"`
		PaymentID string    `json:"payment_id" validate:"required"`
		Signature string    `json:"signature" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, render.CodeServerError, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		paid, err := billService.ConfirmPayment(r.Context(), user.ID, data.BillID, data.OrderID, data.PaymentID, data.Signature)
		if err != nil {
			renderBillError(w, l, err)
			return
		}

		render.JSON(w, toBillResponse(paid))
	})
}

func handleListBills(billService billService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, render.CodeServerError, "Internal service error", http.StatusInternalServerError)
			return
		}

		bills, err := billService.ListBills(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list bills", "error", err)
			render.Error(w, render.CodeServerError, "Internal server error", http.StatusInternalServerError)
			return
		}

		responses := make([]billResponse, 0, len(bills))
		for _, b := range bills {
			responses = append(responses, toBillResponse(b))
		}
		render.JSON(w, responses)
	})
}
