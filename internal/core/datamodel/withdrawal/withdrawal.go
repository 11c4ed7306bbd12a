package withdrawal

import (
	"time"
)

const (
	StatusRequested  = "REQUESTED"
	StatusProcessing = "PROCESSING"
	StatusPaid       = "PAID"
	StatusFailed     = "FAILED"
)

// WithdrawalRequest reserves part of a seller's balance for payout. The
// debit happens in the same transaction that creates the REQUESTED row;
// cancellation (or payout failure) credits it back. PROCESSING is reserved
// for the external payout integration.
type WithdrawalRequest struct {
	ID            string     `gorm:"primaryKey;column:id"`
	SellerID      string     `gorm:"column:seller_id;not null;index"`
	AmountCents   int64      `gorm:"column:amount_cents;not null"`
	PayoutKey     string     `gorm:"column:payout_key;not null"`
	PayoutKeyType string     `gorm:"column:payout_key_type"`
	Status        string     `gorm:"column:status;default:REQUESTED"`
	CreatedAt     time.Time  `gorm:"column:created_at;default:now()"`
	ProcessedAt   *time.Time `gorm:"column:processed_at"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

// CanCancel reports whether the request is still in the only cancellable
// state.
func (w *WithdrawalRequest) CanCancel() bool {
	return w.Status == StatusRequested
}
