package checkout

import (
	"github.com/diogopimentels/capicash/internal/core/common/validation"
)

// BuyerInfo is the contact data the gateway needs to create the buyer
// identity. Phone and tax id arrive in whatever format the checkout page
// collected; the service strips them down to digits.
type BuyerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	TaxID string `json:"tax_id"`
}

type CreateSessionRequest struct {
	ProductID string    `json:"product_id"`
	Buyer     BuyerInfo `json:"buyer"`
}

func (r *CreateSessionRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("product_id", r.ProductID).Required()
	validator.Field("buyer.name", r.Buyer.Name).Required().MaxLength(120)
	validator.Field("buyer.email", r.Buyer.Email).Email()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type PaymentPayloadDTO struct {
	PixCode   string `json:"pix_code,omitempty"`
	PixQRCode string `json:"pix_qr_code,omitempty"`
	HostedURL string `json:"hosted_url,omitempty"`
}

type CreateSessionResponse struct {
	SessionID      string            `json:"session_id"`
	AmountCents    int64             `json:"amount_cents"`
	PaymentPayload PaymentPayloadDTO `json:"payment_payload"`
}

type SessionStatusResponse struct {
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	ProductID   string `json:"product_id"`
}
