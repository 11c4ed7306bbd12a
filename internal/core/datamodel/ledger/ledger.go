package ledger

import (
	"time"
)

// LedgerTransaction is one settled sale. Rows are append-only; the unique
// index on session_id is the settlement idempotency marker, so at most one
// row can ever exist per checkout session no matter how many webhook
// deliveries race.
type LedgerTransaction struct {
	ID         string    `gorm:"primaryKey;column:id"`
	SessionID  string    `gorm:"column:session_id;not null;uniqueIndex"`
	SellerID   string    `gorm:"column:seller_id;not null;index"`
	ProductID  string    `gorm:"column:product_id;not null"`
	GrossCents int64     `gorm:"column:gross_cents;not null"`
	FeeCents   int64     `gorm:"column:fee_cents;not null"`
	NetCents   int64     `gorm:"column:net_cents;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
}

func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}

// Balance holds a seller's withdrawable funds. AvailableCents never goes
// negative; every mutation happens inside the same database transaction as
// the ledger or withdrawal change that triggered it.
type Balance struct {
	SellerID       string    `gorm:"primaryKey;column:seller_id"`
	AvailableCents int64     `gorm:"column:available_cents;not null;default:0"`
	UpdatedAt      time.Time `gorm:"column:updated_at;default:now()"`
}

func (Balance) TableName() string {
	return "balances"
}
