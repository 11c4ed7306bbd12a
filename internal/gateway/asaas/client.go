package asaas

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

	"github.com/diogopimentels/capicash/internal/core/events"
	"github.com/diogopimentels/capicash/internal/gateway"
)

const (
	// maxChargeAttempts bounds the wallet-propagation retry loop. With
	// retryDelay=2s the worst case charge creation blocks ~6s, which the
	// HTTP client timeout must accommodate.
	maxChargeAttempts = 3
	defaultRetryDelay = 2 * time.Second
)

type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	RetryDelay     time.Duration
}

// Client integrates the Asaas PIX API: customers, split charges against
// seller sub-accounts (wallets), and QR-code payloads.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryDelay time.Duration
	logger     *slog.Logger
	eventBus   *events.EventBus
}

func NewClient(cfg Config, eventBus *events.EventBus, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		retryDelay: retryDelay,
		logger:     logger,
		eventBus:   eventBus,
	}
}

func (c *Client) Name() string {
	return "asaas"
}

func (c *Client) SupportsSplit() bool {
	return true
}

// asaasError is the provider's error envelope.
type asaasError struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

func (e *asaasError) describe() string {
	parts := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", item.Code, item.Description))
	}
	return strings.Join(parts, "; ")
}

// isWalletError matches the sandbox's "Wallet inexistente ou inválida"
// class of rejections, which covers both replication lag and genuinely
// unknown wallets. The retry loop decides which one it was.
func (e *asaasError) isWalletError() bool {
	for _, item := range e.Errors {
		if item.Code == "invalid_wallet" {
			return true
		}
		if strings.Contains(item.Description, "Wallet") &&
			(strings.Contains(item.Description, "inexistente") || strings.Contains(item.Description, "inválida")) {
			return true
		}
	}
	return false
}

func (e *asaasError) isIdentityInUse() bool {
	for _, item := range e.Errors {
		desc := item.Description
		if strings.Contains(desc, "em uso") && (strings.Contains(desc, "email") || strings.Contains(desc, "Email") || strings.Contains(desc, "CPF") || strings.Contains(desc, "cpfCnpj")) {
			return true
		}
	}
	return false
}

func (c *Client) CreateCustomer(ctx context.Context, customer gateway.Customer) (string, error) {
	payload := map[string]interface{}{
		"name":    customer.Name,
		"cpfCnpj": customer.TaxID,
	}
	if customer.Phone != "" {
		payload["mobilePhone"] = customer.Phone
	}
	if customer.Email != "" {
		payload["email"] = customer.Email
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/v3/customers", payload, &resp); err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create customer: provider returned no id")
	}

	c.logger.Info("asaas customer created", "customer_id", resp.ID)
	return resp.ID, nil
}

type chargeResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoiceUrl"`
	Status     string `json:"status"`
}

// CreateCharge submits a PIX charge with the seller's split rule. Wallet
// replication lag inside the provider is retried with a fixed delay; when
// the retry budget runs out the same charge is resubmitted without the
// split rule so the buyer-facing checkout still succeeds. That fallback is
// flagged on the event bus because the platform fee is not captured at the
// gateway for such charges.
func (c *Client) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	payload := c.chargePayload(req, true)

	var lastErr error
	for attempt := 1; attempt <= maxChargeAttempts; attempt++ {
		var resp chargeResponse
		err := c.post(ctx, "/v3/payments", payload, &resp)
		if err == nil {
			return &gateway.Charge{
				ID:           resp.ID,
				HostedURL:    resp.InvoiceURL,
				SplitApplied: req.SellerWalletID != "",
			}, nil
		}
		lastErr = err

		apiErr, ok := err.(*apiError)
		if !ok || !apiErr.body.isWalletError() || req.SellerWalletID == "" {
			return nil, fmt.Errorf("create charge: %w", err)
		}

		if attempt < maxChargeAttempts {
			c.logger.Warn("asaas wallet not propagated yet, retrying",
				"wallet_id", req.SellerWalletID,
				"attempt", attempt,
				"max_attempts", maxChargeAttempts,
				"retry_delay", c.retryDelay.String())

			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("create charge: %w", ctx.Err())
			}
			continue
		}
	}

	// Retry budget exhausted on the wallet signal: availability over fee
	// capture. Submit the same charge without the split rule.
	c.logger.Error("asaas split charge failed after retry budget, falling back without split",
		"wallet_id", req.SellerWalletID,
		"amount_cents", req.AmountCents,
		"split_fallback", true)

	var fallbackResp chargeResponse
	if err := c.post(ctx, "/v3/payments", c.chargePayload(req, false), &fallbackResp); err != nil {
		// The fallback failed too; classify the original wallet signal so
		// the caller can self-heal the stored wallet.
		return nil, fmt.Errorf("create charge fallback: %w: %w", gateway.ErrWalletInvalid, lastErr)
	}

	if c.eventBus != nil {
		if err := c.eventBus.Publish(ctx, events.NewSplitFallbackEvent(fallbackResp.ID, req.SellerWalletID, req.AmountCents)); err != nil {
			c.logger.Error("failed to publish split fallback event",
				"error", err,
				"charge_id", fallbackResp.ID,
				"wallet_id", req.SellerWalletID)
		}
	}

	return &gateway.Charge{
		ID:           fallbackResp.ID,
		HostedURL:    fallbackResp.InvoiceURL,
		SplitApplied: false,
	}, nil
}

func (c *Client) chargePayload(req gateway.ChargeRequest, withSplit bool) map[string]interface{} {
	payload := map[string]interface{}{
		"customer":    req.CustomerID,
		"billingType": "PIX",
		"value":       float64(req.AmountCents) / 100,
		"dueDate":     time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		"description": req.Description,
	}
	if withSplit && req.SellerWalletID != "" {
		payload["split"] = []map[string]interface{}{
			{
				"walletId":   req.SellerWalletID,
				"fixedValue": float64(gateway.SellerShareCents(req.AmountCents)) / 100,
			},
		}
	}
	return payload
}

// FetchPaymentPayload loads the PIX copy-paste code and QR image for an
// existing charge. Best effort: the charge stays valid even when this
// fails.
func (c *Client) FetchPaymentPayload(ctx context.Context, chargeID string) (*gateway.PaymentPayload, error) {
	var resp struct {
		Payload      string `json:"payload"`
		EncodedImage string `json:"encodedImage"`
	}
	if err := c.get(ctx, "/v3/payments/"+chargeID+"/pixQrCode", &resp); err != nil {
		return nil, fmt.Errorf("fetch pix qrcode: %w", err)
	}
	return &gateway.PaymentPayload{
		PixCode:   resp.Payload,
		PixQRCode: resp.EncodedImage,
	}, nil
}

// CreateSubAccount provisions a seller wallet. Identity collisions are
// reported as gateway.ErrIdentityInUse so the provisioner can retry once
// with an alias identity.
func (c *Client) CreateSubAccount(ctx context.Context, req gateway.SubAccountRequest) (string, error) {
	payload := map[string]interface{}{
		"name":    req.Name,
		"email":   req.Email,
		"cpfCnpj": req.Document,
		// Sandbox requires a full address block for sub-accounts.
		"mobilePhone":   "11999999999",
		"postalCode":    "01001000",
		"address":       "Av. Paulista",
		"addressNumber": "100",
		"province":      "Centro",
		"city":          "Sao Paulo",
		"state":         "SP",
		"birthDate":     "1990-01-01",
		"incomeValue":   5000,
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/v3/accounts", payload, &resp); err != nil {
		if apiErr, ok := err.(*apiError); ok && apiErr.body.isIdentityInUse() {
			return "", fmt.Errorf("create sub-account: %w: %s", gateway.ErrIdentityInUse, apiErr.body.describe())
		}
		return "", fmt.Errorf("create sub-account: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create sub-account: provider returned no wallet id")
	}

	c.logger.Info("asaas sub-account created", "wallet_id", resp.ID)
	return resp.ID, nil
}

// WalletStatus is the optional pre-flight check on a stored wallet id.
func (c *Client) WalletStatus(ctx context.Context, walletID string) error {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.get(ctx, "/v3/accounts/"+walletID, &resp); err != nil {
		if apiErr, ok := err.(*apiError); ok && (apiErr.status == http.StatusNotFound || apiErr.body.isWalletError()) {
			return fmt.Errorf("wallet status: %w", gateway.ErrWalletInvalid)
		}
		return fmt.Errorf("wallet status: %w", err)
	}
	return nil
}

// apiError carries the decoded provider error envelope alongside the HTTP
// status so callers can classify failures.
type apiError struct {
	status int
	body   asaasError
	raw    string
}

func (e *apiError) Error() string {
	if desc := e.body.describe(); desc != "" {
		return fmt.Sprintf("asaas API status %d: %s", e.status, desc)
	}
	return fmt.Sprintf("asaas API status %d: %s", e.status, e.raw)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &apiError{status: resp.StatusCode, raw: string(respBody)}
		// Error envelope is best effort; raw body is kept for operator logs.
		_ = json.Unmarshal(respBody, &apiErr.body)
		c.logger.Error("asaas API error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"response", string(respBody))
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
