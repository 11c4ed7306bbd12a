package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentSettled = "payment.settled"
	EventTypeSplitFallback  = "gateway.split_fallback"
)

// PaymentSettledEvent fires exactly once per checkout session, when the
// reconciler commits the settlement transaction. Duplicate webhook
// deliveries never republish it.
type PaymentSettledEvent struct {
	BaseEvent
	SessionID  string `json:"session_id"`
	SellerID   string `json:"seller_id"`
	ProductID  string `json:"product_id"`
	BuyerEmail string `json:"buyer_email"`
	GrossCents int64  `json:"gross_cents"`
	NetCents   int64  `json:"net_cents"`
}

func NewPaymentSettledEvent(sessionID, sellerID, productID, buyerEmail string, grossCents, netCents int64) *PaymentSettledEvent {
	return &PaymentSettledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentSettled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"session_id":  sessionID,
				"seller_id":   sellerID,
				"product_id":  productID,
				"buyer_email": buyerEmail,
				"gross_cents": grossCents,
				"net_cents":   netCents,
			},
		},
		SessionID:  sessionID,
		SellerID:   sellerID,
		ProductID:  productID,
		BuyerEmail: buyerEmail,
		GrossCents: grossCents,
		NetCents:   netCents,
	}
}

// SplitFallbackEvent flags a charge that was created without its split rule
// after the propagation-retry budget ran out. The platform fee was not
// captured at the gateway for this charge; operators monitor this stream.
type SplitFallbackEvent struct {
	BaseEvent
	ChargeID   string `json:"charge_id"`
	WalletID   string `json:"wallet_id"`
	GrossCents int64  `json:"gross_cents"`
}

func NewSplitFallbackEvent(chargeID, walletID string, grossCents int64) *SplitFallbackEvent {
	return &SplitFallbackEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSplitFallback,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"charge_id":   chargeID,
				"wallet_id":   walletID,
				"gross_cents": grossCents,
			},
		},
		ChargeID:   chargeID,
		WalletID:   walletID,
		GrossCents: grossCents,
	}
}
