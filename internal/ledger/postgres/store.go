package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	checkoutmodel "github.com/diogopimentels/capicash/internal/core/datamodel/checkout"
	ledgermodel "github.com/diogopimentels/capicash/internal/core/datamodel/ledger"
	withdrawalmodel "github.com/diogopimentels/capicash/internal/core/datamodel/withdrawal"
	ledgerpkg "github.com/diogopimentels/capicash/internal/ledger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) ledgerpkg.StoreAPI {
	return &Store{
		db: db,
	}
}

// Settle is the single transactional boundary for payment confirmation.
// The conditional status flip and the unique index on session_id both stop
// duplicate deliveries; whichever check fires first, the transaction rolls
// back and the settlement reports a no-op.
func (s *Store) Settle(ctx context.Context, params ledgerpkg.SettleParams) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&checkoutmodel.CheckoutSession{}).
			Where("id = ? AND status = ?", params.SessionID, checkoutmodel.StatusPending).
			Updates(map[string]interface{}{
				"status":     checkoutmodel.StatusPaid,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgerpkg.ErrAlreadySettled
		}

		txn := &ledgermodel.LedgerTransaction{
			ID:         uuid.New().String(),
			SessionID:  params.SessionID,
			SellerID:   params.SellerID,
			ProductID:  params.ProductID,
			GrossCents: params.GrossCents,
			FeeCents:   params.FeeCents,
			NetCents:   params.NetCents,
			CreatedAt:  time.Now(),
		}
		if err := tx.Create(txn).Error; err != nil {
			if isUniqueViolation(err) {
				return ledgerpkg.ErrAlreadySettled
			}
			return err
		}

		return creditBalance(tx, params.SellerID, params.NetCents)
	})

	if err != nil {
		if errors.Is(err, ledgerpkg.ErrAlreadySettled) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) DebitForWithdrawal(ctx context.Context, req *withdrawalmodel.WithdrawalRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ledgermodel.Balance{}).
			Where("seller_id = ? AND available_cents >= ?", req.SellerID, req.AmountCents).
			Updates(map[string]interface{}{
				"available_cents": gorm.Expr("available_cents - ?", req.AmountCents),
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgerpkg.ErrInsufficientFunds
		}

		return tx.Create(req).Error
	})
}

func (s *Store) CancelWithdrawal(ctx context.Context, sellerID, withdrawalID string) (*withdrawalmodel.WithdrawalRequest, error) {
	var withdrawal withdrawalmodel.WithdrawalRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND seller_id = ?", withdrawalID, sellerID).First(&withdrawal).Error; err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&withdrawalmodel.WithdrawalRequest{}).
			Where("id = ? AND status = ?", withdrawalID, withdrawalmodel.StatusRequested).
			Updates(map[string]interface{}{
				"status":       withdrawalmodel.StatusFailed,
				"processed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgerpkg.ErrNotCancellable
		}

		withdrawal.Status = withdrawalmodel.StatusFailed
		withdrawal.ProcessedAt = &now

		return creditBalance(tx, sellerID, withdrawal.AmountCents)
	})
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (s *Store) GetBalance(ctx context.Context, sellerID string) (*ledgermodel.Balance, error) {
	var balance ledgermodel.Balance
	err := s.db.WithContext(ctx).Where("seller_id = ?", sellerID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A seller with no settled sales has a zero balance, not a
			// missing one.
			return &ledgermodel.Balance{SellerID: sellerID, AvailableCents: 0}, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (s *Store) GetTransactionBySession(ctx context.Context, sessionID string) (*ledgermodel.LedgerTransaction, error) {
	var txn ledgermodel.LedgerTransaction
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// creditBalance increments inside the caller's transaction, creating the
// balance row on a seller's first settlement.
func creditBalance(tx *gorm.DB, sellerID string, amountCents int64) error {
	res := tx.Model(&ledgermodel.Balance{}).
		Where("seller_id = ?", sellerID).
		Updates(map[string]interface{}{
			"available_cents": gorm.Expr("available_cents + ?", amountCents),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&ledgermodel.Balance{
			SellerID:       sellerID,
			AvailableCents: amountCents,
			UpdatedAt:      time.Now(),
		}).Error
	}
	return nil
}

// isUniqueViolation matches postgres (23505) and the sqlite driver used in
// tests.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
