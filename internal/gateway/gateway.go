package gateway

import (
	"context"
	"errors"
)

// Sentinel errors the provider adapters translate raw gateway responses
// into. Callers branch on these, never on provider payload text.
var (
	// ErrWalletNotPropagated means the seller sub-account exists but has
	// not replicated through the provider yet. Retryable.
	ErrWalletNotPropagated = errors.New("gateway: seller wallet not yet propagated")

	// ErrWalletInvalid means the provider does not recognize the stored
	// wallet id at all. The caller must reset the stored wallet so the
	// next attempt re-provisions it.
	ErrWalletInvalid = errors.New("gateway: seller wallet unknown or invalid")

	// ErrIdentityInUse means sub-account creation was rejected because the
	// email or document is already registered at the provider.
	ErrIdentityInUse = errors.New("gateway: identity already in use")
)

// Customer is a buyer identity to resolve at the gateway before charging.
type Customer struct {
	Name  string
	Email string
	TaxID string
	Phone string
}

// ChargeRequest describes one charge. SellerWalletID empty means no split
// rule is attached. ExternalRef identifies the product on providers that
// carry line items instead of a separate customer record.
type ChargeRequest struct {
	CustomerID     string
	ExternalRef    string
	AmountCents    int64
	Description    string
	SellerWalletID string
}

// Charge is the provider's view of a created charge. SplitApplied is false
// on the no-split fallback path.
type Charge struct {
	ID           string
	HostedURL    string
	PixCode      string
	PixQRCode    string
	SplitApplied bool
}

// PaymentPayload is the buyer-facing payment material for an existing
// charge.
type PaymentPayload struct {
	PixCode   string
	PixQRCode string
	HostedURL string
}

// SubAccountRequest carries the seller identity used to provision a
// gateway-side wallet.
type SubAccountRequest struct {
	Name     string
	Email    string
	Document string
}

// Gateway is the capability set every payment provider integration
// implements. The active provider is selected by configuration.
type Gateway interface {
	Name() string
	SupportsSplit() bool
	CreateCustomer(ctx context.Context, c Customer) (string, error)
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	FetchPaymentPayload(ctx context.Context, chargeID string) (*PaymentPayload, error)
}

// SubAccountProvider is implemented by gateways that support split payments
// via seller sub-accounts.
type SubAccountProvider interface {
	CreateSubAccount(ctx context.Context, req SubAccountRequest) (string, error)
	WalletStatus(ctx context.Context, walletID string) error
}

const (
	sellerShareNumerator   = 8
	sellerShareDenominator = 10
)

// SellerShareCents returns the seller's 80% share of a charge, rounded
// half-up to the nearest cent. The platform retains the remainder.
func SellerShareCents(amountCents int64) int64 {
	return (amountCents*sellerShareNumerator + sellerShareDenominator/2) / sellerShareDenominator
}

// PlatformFeeCents is the remainder the platform keeps on a settled charge.
func PlatformFeeCents(amountCents int64) int64 {
	return amountCents - SellerShareCents(amountCents)
}
