package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AMICLONE1/powernetpro/internal/logger"
)

// Order is a payment order opened at the gateway for a bill's payable amount
type Order struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

type Gateway struct {
	GatewayAddr string

	secret string
	client *http.Client
	logger logger.Logger
}

func NewGateway(addr string, secret string, l logger.Logger) *Gateway {
	return &Gateway{
		GatewayAddr: addr,
		secret:      secret,
		client:      &http.Client{},
		logger:      l,
	}
}

// CreateOrder opens an order for the bill's remainder. The caller hands the
// returned order id to the front end, which completes payment at the gateway.
func (g *Gateway) CreateOrder(ctx context.Context, billID uuid.UUID, amount decimal.Decimal) (Order, error) {
	var order Order

	body, err := json.Marshal(map[string]any{
		"receipt": billID.String(),
		"amount":  amount,
	})
	if err != nil {
		return order, fmt.Errorf("failed to encode order request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.GatewayAddr+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return order, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return order, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		g.logger.Warn("Failed to create payment order", "status_code", resp.StatusCode, "bill_id", billID)
		return order, fmt.Errorf("unknown status code %d creating order for bill %s", resp.StatusCode, billID)
	}

	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return order, fmt.Errorf("failed to decode response: %w", err)
	}

	g.logger.Debug("Payment order created", "order_id", order.ID, "bill_id", billID, "amount", amount)
	return order, nil
}

// VerifySignature checks the gateway callback: HMAC-SHA256 over
// "orderID|paymentID" keyed with the shared secret, hex encoded
func (g *Gateway) VerifySignature(orderID string, paymentID string, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
