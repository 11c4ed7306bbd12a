package provider

import (
	"time"
)

const (
	PayoutKeyTypeCPF   = "CPF"
	PayoutKeyTypePhone = "PHONE"
	PayoutKeyTypeEmail = "EMAIL"
)

// ProviderAccount maps a seller to their gateway-side payee identity.
// WalletID is nil until the sub-account is provisioned; the self-heal path
// sets it back to nil when the gateway reports the wallet unknown, forcing
// re-provisioning on the next charge.
type ProviderAccount struct {
	SellerID      string     `gorm:"primaryKey;column:seller_id"`
	Name          string     `gorm:"column:name;not null"`
	Email         string     `gorm:"column:email;not null"`
	Document      string     `gorm:"column:document"`
	WalletID      *string    `gorm:"column:wallet_id"`
	PayoutKey     string     `gorm:"column:payout_key"`
	PayoutKeyType string     `gorm:"column:payout_key_type"`
	CreatedAt     time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;default:now()"`
	WalletResetAt *time.Time `gorm:"column:wallet_reset_at"`
}

func (ProviderAccount) TableName() string {
	return "provider_accounts"
}

// HasWallet reports whether the seller already has a provisioned gateway
// wallet.
func (a *ProviderAccount) HasWallet() bool {
	return a.WalletID != nil && *a.WalletID != ""
}

// HasPayoutKey reports whether withdrawals can be requested.
func (a *ProviderAccount) HasPayoutKey() bool {
	return a.PayoutKey != ""
}
