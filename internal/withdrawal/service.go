package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	internal "github.com/diogopimentels/capicash/internal"
	withdrawalmodel "github.com/diogopimentels/capicash/internal/core/datamodel/withdrawal"
	"github.com/diogopimentels/capicash/internal/ledger"
	"github.com/diogopimentels/capicash/internal/provider"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads withdrawal history. Writes go through the ledger store
// so the balance debit and the request row commit together.
type Repository interface {
	ListBySellerID(sellerID string) ([]*withdrawalmodel.WithdrawalRequest, error)
}

type ServiceAPI interface {
	Request(ctx context.Context, sellerID string, req *CreateWithdrawalRequest) (*WithdrawalDTO, error)
	History(ctx context.Context, sellerID string) (*HistoryResponse, error)
	Cancel(ctx context.Context, sellerID, withdrawalID string) (*WithdrawalDTO, error)
}

type Service struct {
	store    ledger.StoreAPI
	repo     Repository
	accounts provider.ServiceAPI
	logger   *slog.Logger
}

func NewService(store ledger.StoreAPI, repo Repository, accounts provider.ServiceAPI, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		repo:     repo,
		accounts: accounts,
		logger:   logger,
	}
}

// Request reserves part of the seller balance for payout. The seller must
// have registered a payout key first; the snapshot stored on the request is
// what the payout eventually targets, later key changes do not affect it.
func (s *Service) Request(ctx context.Context, sellerID string, req *CreateWithdrawalRequest) (*WithdrawalDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccount(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !account.HasPayoutKey() {
		return nil, internal.ErrMissingPayoutKey
	}

	request := &withdrawalmodel.WithdrawalRequest{
		ID:            uuid.New().String(),
		SellerID:      sellerID,
		AmountCents:   req.AmountCents,
		PayoutKey:     account.PayoutKey,
		PayoutKeyType: account.PayoutKeyType,
		Status:        withdrawalmodel.StatusRequested,
		CreatedAt:     time.Now(),
	}

	if err := s.store.DebitForWithdrawal(ctx, request); err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return nil, internal.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("debit for withdrawal: %w", err)
	}

	s.logger.Info("withdrawal requested",
		"withdrawal_id", request.ID,
		"seller_id", sellerID,
		"amount_cents", request.AmountCents,
		"payout_key_type", request.PayoutKeyType)

	dto := toDTO(request)
	return &dto, nil
}

func (s *Service) History(ctx context.Context, sellerID string) (*HistoryResponse, error) {
	balance, err := s.store.GetBalance(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	requests, err := s.repo.ListBySellerID(sellerID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}

	resp := &HistoryResponse{
		AvailableCents: balance.AvailableCents,
		Withdrawals:    make([]WithdrawalDTO, 0, len(requests)),
	}
	for _, r := range requests {
		switch r.Status {
		case withdrawalmodel.StatusRequested, withdrawalmodel.StatusProcessing:
			resp.PendingCents += r.AmountCents
		case withdrawalmodel.StatusPaid:
			resp.TotalWithdrawnCents += r.AmountCents
		}
		resp.Withdrawals = append(resp.Withdrawals, toDTO(r))
	}

	return resp, nil
}

// Cancel refunds a REQUESTED withdrawal back to the available balance.
// Anything past REQUESTED is already in flight and cannot be recalled.
func (s *Service) Cancel(ctx context.Context, sellerID, withdrawalID string) (*WithdrawalDTO, error) {
	request, err := s.store.CancelWithdrawal(ctx, sellerID, withdrawalID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, internal.ErrWithdrawalNotFound
		case errors.Is(err, ledger.ErrNotCancellable):
			return nil, internal.ErrInvalidStateTransition
		default:
			return nil, fmt.Errorf("cancel withdrawal: %w", err)
		}
	}

	s.logger.Info("withdrawal cancelled",
		"withdrawal_id", request.ID,
		"seller_id", sellerID,
		"amount_cents", request.AmountCents)

	dto := toDTO(request)
	return &dto, nil
}
