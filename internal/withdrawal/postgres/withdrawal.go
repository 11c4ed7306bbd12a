package postgres

import (
	"fmt"

	withdrawalmodel "github.com/diogopimentels/capicash/internal/core/datamodel/withdrawal"
	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) ListBySellerID(sellerID string) ([]*withdrawalmodel.WithdrawalRequest, error) {
	var requests []*withdrawalmodel.WithdrawalRequest
	err := r.db.
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("list withdrawals for seller %s: %w", sellerID, err)
	}
	return requests, nil
}
