package withdrawal

import (
	"time"

	"github.com/diogopimentels/capicash/internal/core/common/validation"
	withdrawalmodel "github.com/diogopimentels/capicash/internal/core/datamodel/withdrawal"
)

type CreateWithdrawalRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (r *CreateWithdrawalRequest) Validate() error {
	if appErr := validation.ValidateAmountCents(r.AmountCents); appErr != nil {
		return appErr
	}
	return nil
}

type WithdrawalDTO struct {
	ID            string     `json:"id"`
	AmountCents   int64      `json:"amount_cents"`
	PayoutKey     string     `json:"payout_key"`
	PayoutKeyType string     `json:"payout_key_type"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

// HistoryResponse is the seller's payout dashboard: current balance plus
// every withdrawal and the aggregates derived from them.
type HistoryResponse struct {
	AvailableCents      int64           `json:"available_cents"`
	PendingCents        int64           `json:"pending_cents"`
	TotalWithdrawnCents int64           `json:"total_withdrawn_cents"`
	Withdrawals         []WithdrawalDTO `json:"withdrawals"`
}

func toDTO(w *withdrawalmodel.WithdrawalRequest) WithdrawalDTO {
	return WithdrawalDTO{
		ID:            w.ID,
		AmountCents:   w.AmountCents,
		PayoutKey:     w.PayoutKey,
		PayoutKeyType: w.PayoutKeyType,
		Status:        w.Status,
		CreatedAt:     w.CreatedAt,
		ProcessedAt:   w.ProcessedAt,
	}
}
