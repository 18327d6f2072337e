// Package payment talks to the hosted invoice API used to collect session
// fees. One invoice is created per booking; confirmation arrives later
// through the provider callback.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"therapy-booking-server/internal/config"
)

// ErrNotConfigured is returned when no provider secret is available.
var ErrNotConfigured = errors.New("payment provider secret is not configured")

type Customer struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name"`
}

type Item struct {
	UnitAmount int64  `json:"unitAmount"`
	Quantity   int    `json:"quantity"`
	Code       string `json:"code"`
}

// InvoiceRequest is the body of the invoice creation call.
type InvoiceRequest struct {
	TransactionID            string   `json:"transactionId"`
	PaymentAccountIdentifier string   `json:"paymentAccountIdentifier"`
	Customer                 Customer `json:"customer"`
	PaymentItems             []Item   `json:"paymentItems"`
	Description              string   `json:"description"`
	ExpiryAt                 string   `json:"expiryAt"`
	Language                 string   `json:"language"`
}

type InvoiceData struct {
	ID         string `json:"id"`
	PaymentURL string `json:"paymentUrl,omitempty"`
}

// InvoiceResponse is the provider's answer. Only Success with a data id
// counts as a created invoice.
type InvoiceResponse struct {
	Success bool        `json:"success"`
	Data    InvoiceData `json:"data"`
	Message string      `json:"message,omitempty"`
}

// Invoicer creates invoices at the provider.
type Invoicer interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceData, error)
}

// Client is the HTTP implementation of Invoicer.
type Client struct {
	url          string
	secret       string
	secretHeader string
	httpClient   *http.Client
}

// NewClient builds a client from the payment settings.
func NewClient(cfg config.PaymentConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:          cfg.APIURL,
		secret:       cfg.SecretKey,
		secretHeader: cfg.SecretHeader,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// CreateInvoice submits req once. Transport failures, non-2xx statuses and
// unsuccessful payloads are all returned as errors.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceData, error) {
	if c.secret == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build invoice request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(c.secretHeader, c.secret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send invoice request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read invoice response: %w", err)
	}

	var out InvoiceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode invoice response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.Success {
		msg := out.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("provider rejected invoice (status %d): %s", resp.StatusCode, msg)
	}
	if out.Data.ID == "" {
		return nil, errors.New("provider response is missing the invoice id")
	}
	return &out.Data, nil
}

// MinorUnits converts an amount to the provider's minor currency unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
