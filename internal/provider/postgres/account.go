package postgres

import (
	"time"

	providermodel "github.com/diogopimentels/capicash/internal/core/datamodel/provider"
	providerpkg "github.com/diogopimentels/capicash/internal/provider"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) providerpkg.RepositoryAPI {
	return &AccountRepository{
		db: db,
	}
}

func (r *AccountRepository) GetBySellerID(sellerID string) (*providermodel.ProviderAccount, error) {
	var account providermodel.ProviderAccount
	err := r.db.Where("seller_id = ?", sellerID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) SetWalletID(sellerID string, walletID *string) error {
	updates := map[string]interface{}{
		"wallet_id":  walletID,
		"updated_at": time.Now(),
	}
	if walletID == nil {
		updates["wallet_reset_at"] = time.Now()
	}
	return r.db.Model(&providermodel.ProviderAccount{}).Where("seller_id = ?", sellerID).Updates(updates).Error
}

func (r *AccountRepository) SetPayoutKey(sellerID, key, keyType string) error {
	return r.db.Model(&providermodel.ProviderAccount{}).Where("seller_id = ?", sellerID).Updates(map[string]interface{}{
		"payout_key":      key,
		"payout_key_type": keyType,
		"updated_at":      time.Now(),
	}).Error
}
