package discom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AMICLONE1/powernetpro/internal/logger"
)

const (
	CodeRetryAfter = "retry-after"
	CodeNoBill     = "no-bill"
	CodeNotFound   = "consumer-not-found"
	CodeUnknown    = "unknown"
)

type GatewayError struct {
	Code string

	RetryAfter time.Duration
	Err        error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("code: %s, retry_after: %d, error: %v", e.Code, e.RetryAfter, e.Err)
}

func NewGatewayError(code string, retryAfter int, err error) *GatewayError {
	return &GatewayError{
		Code:       code,
		RetryAfter: time.Duration(retryAfter) * time.Second,
		Err:        err,
	}
}

// ConsumerBill is a bill as the DISCOM gateway reports it
type ConsumerBill struct {
	BillNumber string          `json:"bill_number"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
	Discom     string          `json:"discom"`
}

// GenerationReading is a metered solar generation for one billing period
type GenerationReading struct {
	ConsumerNumber string          `json:"consumer_number"`
	Period         string          `json:"period"`
	UnitsKWh       decimal.Decimal `json:"units_kwh"`
	Rate           decimal.Decimal `json:"rate"`
}

// CreditValue is what a reading is worth on the ledger
func (g GenerationReading) CreditValue() decimal.Decimal {
	return g.UnitsKWh.Mul(g.Rate).Round(2)
}

type Client struct {
	GatewayAddr string

	client *http.Client
	logger logger.Logger
}

func NewClient(addr string, l logger.Logger) *Client {
	return &Client{
		GatewayAddr: addr,
		client:      &http.Client{},
		logger:      l,
	}
}

// ValidateConsumer checks the consumer number is known to the DISCOM
func (c *Client) ValidateConsumer(ctx context.Context, consumerNumber string, discom string) error {
	resp, err := c.get(ctx, "/api/consumers/"+url.PathEscape(consumerNumber), discom)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return NewGatewayError(CodeNotFound, 0, fmt.Errorf("consumer %s not known to %s", consumerNumber, discom))
	case http.StatusTooManyRequests:
		return c.throttled(resp)
	default:
		c.logger.Warn("Failed to validate consumer", "status_code", resp.StatusCode, "consumer_number", consumerNumber)
		return NewGatewayError(CodeUnknown, 0, fmt.Errorf("unknown status code %d for consumer %s", resp.StatusCode, consumerNumber))
	}
}

// FetchBill pulls the consumer's outstanding bill from the gateway
func (c *Client) FetchBill(ctx context.Context, consumerNumber string, discom string) (ConsumerBill, error) {
	var bill ConsumerBill

	resp, err := c.get(ctx, "/api/consumers/"+url.PathEscape(consumerNumber)+"/bill", discom)
	if err != nil {
		return bill, err
	}
	defer resp.Body.Close() // nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(&bill); err != nil {
			c.logger.Warn("Failed to decode bill response", "error", err)
			return bill, fmt.Errorf("failed to decode response: %w", err)
		}
		c.logger.Debug("Fetched bill", "bill_number", bill.BillNumber, "amount", bill.Amount)
		return bill, nil
	case http.StatusNoContent:
		return bill, NewGatewayError(CodeNoBill, 0, fmt.Errorf("no outstanding bill for consumer %s", consumerNumber))
	case http.StatusNotFound:
		return bill, NewGatewayError(CodeNotFound, 0, fmt.Errorf("consumer %s not known to %s", consumerNumber, discom))
	case http.StatusTooManyRequests:
		return bill, c.throttled(resp)
	default:
		c.logger.Warn("Failed to fetch bill", "status_code", resp.StatusCode, "consumer_number", consumerNumber)
		return bill, NewGatewayError(CodeUnknown, 0, fmt.Errorf("unknown status code %d for consumer %s", resp.StatusCode, consumerNumber))
	}
}

// GetGeneration reads the metered solar generation for the billing period
func (c *Client) GetGeneration(ctx context.Context, consumerNumber string, period string) (GenerationReading, error) {
	var reading GenerationReading

	resp, err := c.get(ctx, "/api/consumers/"+url.PathEscape(consumerNumber)+"/generation/"+url.PathEscape(period), "")
	if err != nil {
		return reading, err
	}
	defer resp.Body.Close() // nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(&reading); err != nil {
			c.logger.Warn("Failed to decode generation response", "error", err)
			return reading, fmt.Errorf("failed to decode response: %w", err)
		}
		return reading, nil
	case http.StatusNoContent:
		return reading, NewGatewayError(CodeNoBill, 0, fmt.Errorf("no reading for consumer %s in %s", consumerNumber, period))
	case http.StatusTooManyRequests:
		return reading, c.throttled(resp)
	default:
		return reading, NewGatewayError(CodeUnknown, 0, fmt.Errorf("unknown status code %d for consumer %s", resp.StatusCode, consumerNumber))
	}
}

func (c *Client) get(ctx context.Context, path string, discom string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GatewayAddr+path, nil)
	if err != nil {
		return nil, NewGatewayError(CodeUnknown, 0, fmt.Errorf("failed to create request: %w", err))
	}
	if discom != "" {
		q := req.URL.Query()
		q.Set("discom", discom)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewGatewayError(CodeUnknown, 0, fmt.Errorf("failed to send request: %w", err))
	}

	return resp, nil
}

func (c *Client) throttled(resp *http.Response) error {
	header := resp.Header.Get("Retry-After")
	retryAfter, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil {
		retryAfter = 60 // default to 60 seconds if parsing fails
	}

	c.logger.Warn("DISCOM gateway throttled", "retry_after", retryAfter)
	return NewGatewayError(CodeRetryAfter, retryAfter, fmt.Errorf("retry after %d seconds", retryAfter))
}
