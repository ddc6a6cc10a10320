// Package payment handles the paid quota-bypass flow against a payment
// provider.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	stripeBaseURL         = "https://api.stripe.com"
	defaultRequestTimeout = 20 * time.Second
	maxErrorBodyBytes     = 512
)

// IntentStatusSucceeded is the provider status of a completed payment.
const IntentStatusSucceeded = "succeeded"

// Intent is the provider-side view of a payment intent.
type Intent struct {
	ID           string          `json:"id"`
	ClientSecret string          `json:"client_secret"`
	Status       string          `json:"status"`
	Amount       int64           `json:"amount"`
	Currency     string          `json:"currency"`
	Raw          json.RawMessage `json:"-"`
}

// Provider creates and fetches payment intents.
type Provider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (Intent, error)
	GetIntent(ctx context.Context, providerID string) (Intent, error)
}

// StripeClient talks to the Stripe payment intents REST API.
type StripeClient struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewStripeClient constructs a StripeClient.
func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{
		secretKey: secretKey,
		baseURL:   stripeBaseURL,
		client:    &http.Client{Timeout: defaultRequestTimeout},
	}
}

// CreateIntent creates a payment intent for the given amount.
func (c *StripeClient) CreateIntent(ctx context.Context, amountCents int64, currency string) (Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")

	return c.do(ctx, http.MethodPost, "/v1/payment_intents", strings.NewReader(form.Encode()))
}

// GetIntent fetches the current state of a payment intent.
func (c *StripeClient) GetIntent(ctx context.Context, providerID string) (Intent, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return Intent{}, fmt.Errorf("payment: empty intent id")
	}
	return c.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(providerID), nil)
}

func (c *StripeClient) do(ctx context.Context, method, path string, body io.Reader) (Intent, error) {
	req, errReq := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if errReq != nil {
		return Intent{}, fmt.Errorf("payment: build request: %w", errReq)
	}
	req.SetBasicAuth(c.secretKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, errDo := c.client.Do(req)
	if errDo != nil {
		return Intent{}, fmt.Errorf("payment: provider request: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	data, errRead := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if errRead != nil {
		return Intent{}, fmt.Errorf("payment: read response: %w", errRead)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := data
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return Intent{}, fmt.Errorf("payment: provider status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var intent Intent
	if errDecode := json.Unmarshal(data, &intent); errDecode != nil {
		return Intent{}, fmt.Errorf("payment: decode response: %w", errDecode)
	}
	intent.Raw = data
	return intent, nil
}
