package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	internal "github.com/diogopimentels/capicash/internal"
	"github.com/diogopimentels/capicash/internal/core/common/validation"
	providermodel "github.com/diogopimentels/capicash/internal/core/datamodel/provider"
	"github.com/diogopimentels/capicash/internal/gateway"
)

// RepositoryAPI is the persistence surface for seller gateway accounts.
type RepositoryAPI interface {
	GetBySellerID(sellerID string) (*providermodel.ProviderAccount, error)
	SetWalletID(sellerID string, walletID *string) error
	SetPayoutKey(sellerID, key, keyType string) error
}

// ServiceAPI is what checkout and withdrawal consume from this package.
type ServiceAPI interface {
	EnsureAccount(ctx context.Context, sellerID string) (string, error)
	ResetAccount(ctx context.Context, sellerID string) error
	GetAccount(ctx context.Context, sellerID string) (*providermodel.ProviderAccount, error)
	UpdatePayoutKey(ctx context.Context, sellerID, key, keyType string) error
}

// Service provisions and heals seller sub-accounts at the gateway.
type Service struct {
	repo        RepositoryAPI
	subAccounts gateway.SubAccountProvider
	sandboxMode bool
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, subAccounts gateway.SubAccountProvider, sandboxMode bool, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		subAccounts: subAccounts,
		sandboxMode: sandboxMode,
		logger:      logger,
	}
}

// EnsureAccount returns the seller's gateway wallet id, creating the
// sub-account lazily on first use. An identity collision at the provider is
// retried exactly once with an alias email and a fresh document; a second
// rejection is terminal.
func (s *Service) EnsureAccount(ctx context.Context, sellerID string) (string, error) {
	account, err := s.repo.GetBySellerID(sellerID)
	if err != nil {
		return "", internal.ErrSellerNotFound.WithCause(err)
	}

	if account.HasWallet() {
		return *account.WalletID, nil
	}

	document := account.Document
	if !UsableDocument(document) {
		if !s.sandboxMode {
			return "", internal.NewValidationError("Seller document is missing or invalid", internal.ErrCodeInvalidDocument)
		}
		document = GenerateCPF()
		s.logger.Warn("sandbox: substituting generated document for sub-account",
			"seller_id", sellerID)
	}

	s.logger.Info("provisioning gateway sub-account",
		"seller_id", sellerID,
		"email", account.Email)

	walletID, err := s.subAccounts.CreateSubAccount(ctx, gateway.SubAccountRequest{
		Name:     account.Name,
		Email:    account.Email,
		Document: document,
	})
	if err != nil {
		if !errors.Is(err, gateway.ErrIdentityInUse) {
			return "", internal.NewGatewayError("Could not provision the seller wallet", err)
		}

		// The identity already exists at the provider, usually a stale
		// sandbox account. One bounded retry with an alias identity.
		aliasEmail := AliasEmail(account.Email, time.Now().UnixNano())
		retryDocument := document
		if s.sandboxMode {
			retryDocument = GenerateCPF()
		}

		s.logger.Warn("sub-account identity in use, retrying once with alias",
			"seller_id", sellerID,
			"alias_email", aliasEmail)

		walletID, err = s.subAccounts.CreateSubAccount(ctx, gateway.SubAccountRequest{
			Name:     account.Name,
			Email:    aliasEmail,
			Document: retryDocument,
		})
		if err != nil {
			return "", internal.NewConflictError(
				"Seller identity is already registered at the payment provider",
				internal.ErrCodeAccountCollision,
			).WithCause(err)
		}
	}

	if err := s.repo.SetWalletID(sellerID, &walletID); err != nil {
		return "", internal.NewInternalError("failed to persist wallet id", err)
	}

	s.logger.Info("gateway sub-account provisioned",
		"seller_id", sellerID,
		"wallet_id", walletID)

	return walletID, nil
}

// ResetAccount clears the stored wallet id after the gateway reported it
// unknown. The next charge attempt re-provisions it.
func (s *Service) ResetAccount(ctx context.Context, sellerID string) error {
	if err := s.repo.SetWalletID(sellerID, nil); err != nil {
		return internal.NewInternalError("failed to reset wallet id", err)
	}
	s.logger.Warn("seller wallet reset after invalid-wallet signal", "seller_id", sellerID)
	return nil
}

func (s *Service) GetAccount(ctx context.Context, sellerID string) (*providermodel.ProviderAccount, error) {
	account, err := s.repo.GetBySellerID(sellerID)
	if err != nil {
		return nil, internal.ErrSellerNotFound.WithCause(err)
	}
	return account, nil
}

// UpdatePayoutKey validates and stores the seller's PIX payout key.
func (s *Service) UpdatePayoutKey(ctx context.Context, sellerID, key, keyType string) error {
	cleaned := validation.OnlyDigits(key)

	switch keyType {
	case providermodel.PayoutKeyTypeCPF:
		if len(cleaned) != 11 {
			return internal.NewValidationError("CPF payout key must have 11 digits", internal.ErrCodeInvalidPayoutKey)
		}
		key = cleaned
	case providermodel.PayoutKeyTypePhone:
		if len(cleaned) < 10 {
			return internal.NewValidationError("Phone payout key must have at least 10 digits", internal.ErrCodeInvalidPayoutKey)
		}
		key = cleaned
	case providermodel.PayoutKeyTypeEmail:
		if err := validateEmailKey(key); err != nil {
			return err
		}
	default:
		return internal.NewValidationError(
			fmt.Sprintf("Unknown payout key type: %s", keyType),
			internal.ErrCodeInvalidPayoutKey,
		)
	}

	if err := s.repo.SetPayoutKey(sellerID, key, keyType); err != nil {
		return internal.NewInternalError("failed to persist payout key", err)
	}

	s.logger.Info("payout key updated", "seller_id", sellerID, "key_type", keyType)
	return nil
}

func validateEmailKey(key string) error {
	validator := validation.NewValidator()
	validator.Field("payout_key", key).Required().Email()
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
