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
	"github.com/AMICLONE1/powernetpro/internal/service/discom"
	"github.com/AMICLONE1/powernetpro/internal/service/subscription"
)

type subscriptionResponse struct {
	ID             uuid.UUID `json:"id"`
	Project        string    `json:"project"`
	CapacityKW     float64   `json:"capacity_kw"`
	ConsumerNumber string    `json:"consumer_number"`
	Discom         string    `json:"discom"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func toSubscriptionResponse(s models.Subscription) subscriptionResponse {
	capacity, _ := s.CapacityKW.Float64()

	return subscriptionResponse{
		ID:             s.ID,
		Project:        s.Project,
		CapacityKW:     capacity,
		ConsumerNumber: s.ConsumerNumber,
		Discom:         s.Discom,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
	}
}

func handleReserveCapacity(subService subscriptionService, l logger.Logger) http.Handler {
	type request struct {
		Project        string          `json:"project" validate:"required,max=128"`
		CapacityKW     decimal.Decimal `json:"capacity_kw" validate:"required"`
		ConsumerNumber string          `json:"consumer_number" validate:"required,max=64"`
		Discom         string          `json:"discom" validate:"required,max=64"`
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

		sub, err := subService.Reserve(r.Context(), user.ID, subscription.ReserveParams{
			Project:        data.Project,
			CapacityKW:     data.CapacityKW,
			ConsumerNumber: data.ConsumerNumber,
			Discom:         data.Discom,
		})

		var gwErr *discom.GatewayError

		switch {
		case err == nil:
			render.JSONWithStatus(w, toSubscriptionResponse(sub), http.StatusCreated)
		case errors.Is(err, apperrors.ErrSubscriptionExists):
			render.Error(w, render.CodeValidation, "Subscription already exists for this consumer", http.StatusConflict)
		case errors.As(err, &gwErr) && gwErr.Code == discom.CodeNotFound:
			render.Error(w, render.CodeValidation, "Consumer number not known to the DISCOM", http.StatusBadRequest)
		default:
			l.Error("Failed to reserve capacity", "error", err)
			render.Error(w, render.CodeServerError, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListSubscriptions(subService subscriptionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, render.CodeServerError, "Internal service error", http.StatusInternalServerError)
			return
		}

		subs, err := subService.ListSubscriptions(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list subscriptions", "error", err)
			render.Error(w, render.CodeServerError, "Internal server error", http.StatusInternalServerError)
			return
		}

		responses := make([]subscriptionResponse, 0, len(subs))
		for _, s := range subs {
			responses = append(responses, toSubscriptionResponse(s))
		}
		render.JSON(w, responses)
	})
}
