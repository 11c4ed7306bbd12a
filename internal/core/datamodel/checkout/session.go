package checkout

import (
	"time"
)

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
	StatusFailed  = "FAILED"
)

// CheckoutSession tracks one buyer checkout from charge creation to
// settlement. Status only moves forward out of PENDING, and only the
// webhook reconciler moves it.
type CheckoutSession struct {
	ID          string    `gorm:"primaryKey;column:id"`
	ProductID   string    `gorm:"column:product_id;not null;index"`
	SellerID    string    `gorm:"column:seller_id;not null;index"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	Gateway     string    `gorm:"column:gateway;not null"`
	GatewayID   string    `gorm:"column:gateway_id;not null;index"`
	Status      string    `gorm:"column:status;default:PENDING"`
	PixCode     string    `gorm:"column:pix_code"`
	PixQRCode   string    `gorm:"column:pix_qr_code"`
	HostedURL   string    `gorm:"column:hosted_url"`
	BuyerEmail  string    `gorm:"column:buyer_email"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}

// IsTerminal reports whether the session can no longer change status.
func (s *CheckoutSession) IsTerminal() bool {
	return s.Status != StatusPending
}
