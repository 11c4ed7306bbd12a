package webhook

import (
	"encoding/json"
	"fmt"
)

// Event is the normalized form of a provider notification: which charge it
// is about and whether it confirms payment. Everything else in the provider
// envelope is discarded.
type Event struct {
	Type      string
	ChargeID  string
	Confirmed bool
}

// Parser decodes one provider's webhook envelope into an Event.
type Parser func(body []byte) (*Event, error)

// ParseAsaasEvent decodes the Asaas webhook envelope. Payment confirmations
// arrive as PAYMENT_RECEIVED or PAYMENT_CONFIRMED depending on the billing
// type; both mean funds were captured.
func ParseAsaasEvent(body []byte) (*Event, error) {
	var envelope struct {
		Event   string `json:"event"`
		Payment struct {
			ID string `json:"id"`
		} `json:"payment"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode asaas webhook: %w", err)
	}
	if envelope.Payment.ID == "" {
		return nil, fmt.Errorf("asaas webhook missing payment id")
	}

	return &Event{
		Type:      envelope.Event,
		ChargeID:  envelope.Payment.ID,
		Confirmed: envelope.Event == "PAYMENT_RECEIVED" || envelope.Event == "PAYMENT_CONFIRMED",
	}, nil
}

// ParseAbacateEvent decodes the Abacate Pay webhook envelope. Only
// billing.paid confirms payment.
func ParseAbacateEvent(body []byte) (*Event, error) {
	var envelope struct {
		Event string `json:"event"`
		Data  struct {
			ID      string `json:"id"`
			Billing struct {
				ID string `json:"id"`
			} `json:"billing"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode abacate webhook: %w", err)
	}

	chargeID := envelope.Data.Billing.ID
	if chargeID == "" {
		chargeID = envelope.Data.ID
	}
	if chargeID == "" {
		return nil, fmt.Errorf("abacate webhook missing billing id")
	}

	return &Event{
		Type:      envelope.Event,
		ChargeID:  chargeID,
		Confirmed: envelope.Event == "billing.paid",
	}, nil
}
