package ledger

import (
	"context"
	"errors"

	ledgermodel "github.com/diogopimentels/capicash/internal/core/datamodel/ledger"
	withdrawalmodel "github.com/diogopimentels/capicash/internal/core/datamodel/withdrawal"
)

// Store-level sentinel conditions. Services translate these into their
// user-facing error kinds.
var (
	// ErrAlreadySettled means another delivery of the same confirmation won
	// the race; the caller treats it as a successful no-op.
	ErrAlreadySettled = errors.New("ledger: session already settled")

	// ErrInsufficientFunds means a conditional debit matched no row, either
	// because the balance is too low or does not exist yet.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrNotCancellable means the withdrawal left REQUESTED before the
	// cancel committed.
	ErrNotCancellable = errors.New("ledger: withdrawal not cancellable")
)

// SettleParams is one confirmed payment to fold into the ledger.
type SettleParams struct {
	SessionID  string
	SellerID   string
	ProductID  string
	GrossCents int64
	FeeCents   int64
	NetCents   int64
}

// StoreAPI exposes the transactional primitives every balance mutation
// goes through. Each method is one database transaction; a balance never
// changes outside one of them.
type StoreAPI interface {
	// Settle flips the session to PAID, appends the ledger transaction and
	// credits the seller balance as one unit. Returns false when the
	// session was already settled (idempotent no-op).
	Settle(ctx context.Context, params SettleParams) (bool, error)

	// DebitForWithdrawal conditionally debits the balance and creates the
	// REQUESTED withdrawal row atomically. ErrInsufficientFunds leaves
	// everything unchanged.
	DebitForWithdrawal(ctx context.Context, req *withdrawalmodel.WithdrawalRequest) error

	// CancelWithdrawal moves a REQUESTED withdrawal to FAILED and credits
	// the amount back atomically.
	CancelWithdrawal(ctx context.Context, sellerID, withdrawalID string) (*withdrawalmodel.WithdrawalRequest, error)

	GetBalance(ctx context.Context, sellerID string) (*ledgermodel.Balance, error)
	GetTransactionBySession(ctx context.Context, sessionID string) (*ledgermodel.LedgerTransaction, error)
}
