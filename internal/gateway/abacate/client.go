package abacate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/diogopimentels/capicash/internal/gateway"
)

type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

// Client integrates Abacate Pay one-time PIX billings. Abacate has no
// sub-account concept, so charges are never split; the seller share is
// still recorded in the ledger at settlement time.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) Name() string {
	return "abacate"
}

func (c *Client) SupportsSplit() bool {
	return false
}

// CreateCustomer is a no-op for Abacate: the customer rides along inside
// the billing payload, so there is no separate identity to resolve.
func (c *Client) CreateCustomer(ctx context.Context, customer gateway.Customer) (string, error) {
	return "", nil
}

type billingResponse struct {
	Data struct {
		ID  string `json:"id"`
		URL string `json:"url"`
		Pix struct {
			Code   string `json:"code"`
			QRCode string `json:"qrCode"`
		} `json:"pix"`
	} `json:"data"`
}

func (c *Client) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	payload := map[string]interface{}{
		"frequency": "ONE_TIME",
		"methods":   []string{"PIX"},
		"products": []map[string]interface{}{
			{
				"externalId": req.ExternalRef,
				"name":       req.Description,
				"quantity":   1,
				"price":      req.AmountCents,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal billing: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/billing/create", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("abacate billing error",
			"status", resp.StatusCode,
			"response", string(respBody))
		return nil, fmt.Errorf("abacate API status %d", resp.StatusCode)
	}

	var billing billingResponse
	if err := json.Unmarshal(respBody, &billing); err != nil {
		return nil, fmt.Errorf("decode billing: %w", err)
	}

	c.logger.Info("abacate billing created", "billing_id", billing.Data.ID)

	return &gateway.Charge{
		ID:           billing.Data.ID,
		HostedURL:    billing.Data.URL,
		PixCode:      billing.Data.Pix.Code,
		PixQRCode:    billing.Data.Pix.QRCode,
		SplitApplied: false,
	}, nil
}

// FetchPaymentPayload is a no-op for Abacate: the PIX payload arrives with
// the billing response itself.
func (c *Client) FetchPaymentPayload(ctx context.Context, chargeID string) (*gateway.PaymentPayload, error) {
	return nil, fmt.Errorf("abacate does not expose a payload endpoint for billing %s", chargeID)
}
