package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AMICLONE1/powernetpro/internal/handlers/render"
	"github.com/AMICLONE1/powernetpro/internal/handlers/userctx"
	"github.com/AMICLONE1/powernetpro/internal/logger"
)

func handleListCredits(creditService creditService, l logger.Logger) http.Handler {
	type creditEntry struct {
		ID        uuid.UUID  `json:"id"`
		Amount    float64    `json:"amount"`
		Status    string     `json:"status"`
		CreatedAt time.Time  `json:"created_at"`
		RefID     *uuid.UUID `json:"ref_id,omitempty"`
		RefType   *string    `json:"ref_type,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, render.CodeServerError, "Internal service error", http.StatusInternalServerError)
			return
		}

		entries, err := creditService.ListCredits(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list credits", "error", err)
			render.Error(w, render.CodeServerError, "Internal server error", http.StatusInternalServerError)
			return
		}

		credits := make([]creditEntry, 0, len(entries))
		for _, e := range entries {
			amount, _ := e.Amount.Float64()
			credits = append(credits, creditEntry{
				ID:        e.ID,
				Amount:    amount,
				Status:    e.Status,
				CreatedAt: e.CreatedAt,
				RefID:     e.RefID,
				RefType:   e.RefType,
			})
		}
		render.JSON(w, credits)
	})
}

func handleCreditBalance(creditService creditService, l logger.Logger) http.Handler {
	type response struct {
		Pending float64 `json:"pending"`
		Applied float64 `json:"applied"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, render.CodeServerError, "Internal service error", http.StatusInternalServerError)
			return
		}

		balance, err := creditService.GetBalance(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to get credit balance", "error", err)
			render.Error(w, render.CodeServerError, "Internal server error", http.StatusInternalServerError)
			return
		}

		pending, _ := balance.Pending.Float64()
		applied, _ := balance.Applied.Float64()
		render.JSON(w, response{Pending: pending, Applied: applied})
	})
}
