package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AMICLONE1/powernetpro/internal/logger"
)

func sign(secret string, orderID string, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	billID := uuid.New()

	t.Run("posts the bill remainder and decodes the order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/orders", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, billID.String(), body["receipt"])

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": "order_abc", "amount": "350"}`))
		}))
		t.Cleanup(server.Close)

		gateway := NewGateway(server.URL, "secret", logger.NewNoOpLogger())

		order, err := gateway.CreateOrder(ctx, billID, decimal.RequireFromString("350"))

		require.NoError(t, err)
		require.Equal(t, "order_abc", order.ID)
		require.True(t, order.Amount.Equal(decimal.RequireFromString("350")))
	})

	t.Run("unexpected status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(server.Close)

		gateway := NewGateway(server.URL, "secret", logger.NewNoOpLogger())

		_, err := gateway.CreateOrder(ctx, billID, decimal.RequireFromString("350"))

		require.Error(t, err)
	})
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	gateway := NewGateway("http://localhost", "secret", logger.NewNoOpLogger())

	t.Run("accepts a properly signed callback", func(t *testing.T) {
		signature := sign("secret", "order_abc", "pay_123")

		require.True(t, gateway.VerifySignature("order_abc", "pay_123", signature))
	})

	t.Run("rejects a signature made with another key", func(t *testing.T) {
		signature := sign("other", "order_abc", "pay_123")

		require.False(t, gateway.VerifySignature("order_abc", "pay_123", signature))
	})

	t.Run("rejects a signature for different ids", func(t *testing.T) {
		signature := sign("secret", "order_abc", "pay_123")

		require.False(t, gateway.VerifySignature("order_abc", "pay_999", signature))
	})
}
