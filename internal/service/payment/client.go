package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nkiryanov/spbuhub/internal/logger"
)

const (
	CodeRetryAfter = "retry-after"
	CodeUnknown    = "unknown"

	defaultTimeout = 5 * time.Second
)

// Error of talking to the gateway, the charge outcome is unknown
type Error struct {
	Code string

	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %s, retry_after: %s, error: %v", e.Code, e.RetryAfter, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code string, retryAfter int, err error) *Error {
	return &Error{
		Code:       code,
		RetryAfter: time.Duration(retryAfter) * time.Second,
		Err:        err,
	}
}

type chargeResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// HTTP gateway client
//
//	POST <addr>/api/charges {"transaction_id", "amount", "method"}
//	200 {"status": "approved" | "declined", "reference", "reason"}
//	402 charge declined
//	429 throttled, see Retry-After
type Client struct {
	GatewayAddr string

	client *http.Client
	logger logger.Logger
}

func NewClient(addr string, l logger.Logger) *Client {
	return &Client{
		GatewayAddr: strings.TrimRight(addr, "/"),
		client:      &http.Client{Timeout: defaultTimeout},
		logger:      l,
	}
}

func (c *Client) Charge(ctx context.Context, charge Charge) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	body, err := json.Marshal(charge)
	if err != nil {
		return Result{}, NewError(CodeUnknown, 0, fmt.Errorf("failed to encode charge: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GatewayAddr+"/api/charges", bytes.NewReader(body))
	if err != nil {
		return Result{}, NewError(CodeUnknown, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, NewError(CodeUnknown, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		return c.processSuccess(resp, charge)
	case http.StatusPaymentRequired:
		c.logger.Info("Charge declined", "transaction_id", charge.TransactionID)
		return Result{Approved: false, Reason: "declined by gateway"}, nil
	case http.StatusTooManyRequests:
		return c.processTooManyRequests(resp)
	default:
		c.logger.Warn("Failed to charge", "status_code", resp.StatusCode, "transaction_id", charge.TransactionID)
		return Result{}, NewError(CodeUnknown, 0, fmt.Errorf("unknown status code %d for transaction %s", resp.StatusCode, charge.TransactionID))
	}
}

func (c *Client) processSuccess(resp *http.Response, charge Charge) (Result, error) {
	var r chargeResponse
	err := json.NewDecoder(resp.Body).Decode(&r)
	if err != nil {
		c.logger.Warn("Failed to decode response", "error", err)
		return Result{}, NewError(CodeUnknown, 0, fmt.Errorf("failed to decode response: %w", err))
	}

	c.logger.Debug("Gateway response", "transaction_id", charge.TransactionID, "status", r.Status, "reference", r.Reference)

	switch r.Status {
	case "approved":
		return Result{Approved: true, Reference: r.Reference}, nil
	case "declined":
		return Result{Approved: false, Reference: r.Reference, Reason: r.Reason}, nil
	default:
		return Result{}, NewError(CodeUnknown, 0, fmt.Errorf("unknown charge status %q", r.Status))
	}
}

func (c *Client) processTooManyRequests(resp *http.Response) (Result, error) {
	header := resp.Header.Get("Retry-After")
	retryAfter, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil {
		retryAfter = 60 // default to 60 seconds if parsing fails
	}

	c.logger.Warn("Payment gateway throttled", "retry_after", retryAfter)
	return Result{}, NewError(CodeRetryAfter, retryAfter, fmt.Errorf("retry after %d seconds", retryAfter))
}
