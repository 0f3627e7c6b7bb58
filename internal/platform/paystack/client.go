// Package paystack provides a minimal client for the Paystack payments API.
// It covers the transaction endpoints the billing flow needs: initialize,
// verify, and fetch by ID.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// DefaultBaseURL is the production Paystack API endpoint.
const DefaultBaseURL = "https://api.paystack.co"

// Config holds the settings needed to construct a Client.
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Client is an HTTP client for the Paystack API.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client from the given config, applying defaults for
// the base URL and timeout when unset.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		secretKey:  cfg.SecretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// InitializeRequest is the payload for starting a new transaction.
// Amount is in the currency's minor unit (kobo for NGN).
type InitializeRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency,omitempty"`
	Reference   string                 `json:"reference,omitempty"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// InitializeData is the useful portion of an initialize response.
type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyData is the useful portion of a verify response.
type VerifyData struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Channel   string `json:"channel"`
	PaidAt    string `json:"paid_at"`
}

type initializeResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    *InitializeData `json:"data"`
}

type verifyResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    *VerifyData `json:"data"`
}

// InitializeTransaction starts a new transaction and returns the hosted
// checkout details.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeData, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal initialize request: %w", err)
	}

	var resp initializeResponse
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	if !resp.Status || resp.Data == nil {
		return nil, fmt.Errorf("paystack initialize failed: %s", resp.Message)
	}
	return resp.Data, nil
}

// VerifyTransaction confirms the outcome of a transaction by its reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyData, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Status || resp.Data == nil {
		return nil, fmt.Errorf("paystack verify failed: %s", resp.Message)
	}
	return resp.Data, nil
}

// GetTransaction fetches a transaction by its Paystack ID.
func (c *Client) GetTransaction(ctx context.Context, id string) (*VerifyData, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodGet, "/transaction/"+id, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Status || resp.Data == nil {
		return nil, fmt.Errorf("paystack get transaction failed: %s", resp.Message)
	}
	return resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read paystack response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("paystack returned %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode paystack response: %w", err)
	}
	return nil
}

// NewReference generates a unique transaction reference in the form
// sub_<unix-millis>_<random>.
func NewReference() string {
	return fmt.Sprintf("sub_%d_%d", time.Now().UnixMilli(), rand.Intn(1000000))
}
