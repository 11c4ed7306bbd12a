package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	internal "github.com/diogopimentels/capicash/internal"
	"github.com/diogopimentels/capicash/internal/core/common/validation"
	checkoutmodel "github.com/diogopimentels/capicash/internal/core/datamodel/checkout"
	productmodel "github.com/diogopimentels/capicash/internal/core/datamodel/product"
	"github.com/diogopimentels/capicash/internal/gateway"
	"github.com/diogopimentels/capicash/internal/provider"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionRepository persists checkout sessions.
type SessionRepository interface {
	Create(session *checkoutmodel.CheckoutSession) error
	GetByID(id string) (*checkoutmodel.CheckoutSession, error)
	GetByGatewayID(gatewayID string) (*checkoutmodel.CheckoutSession, error)
}

// ProductRepository is the read-only product lookup checkout depends on.
type ProductRepository interface {
	GetByID(id string) (*productmodel.Product, error)
}

type ServiceAPI interface {
	Create(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error)
	GetStatus(ctx context.Context, sessionID string) (*SessionStatusResponse, error)
}

// Service orchestrates checkout creation: product lookup, charge creation
// at the gateway (provisioning the seller wallet on demand) and session
// persistence.
type Service struct {
	sessions    SessionRepository
	products    ProductRepository
	gateway     gateway.Gateway
	provisioner provider.ServiceAPI
	logger      *slog.Logger
}

func NewService(sessions SessionRepository, products ProductRepository, gw gateway.Gateway, provisioner provider.ServiceAPI, logger *slog.Logger) *Service {
	return &Service{
		sessions:    sessions,
		products:    products,
		gateway:     gw,
		provisioner: provisioner,
		logger:      logger,
	}
}

func (s *Service) Create(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(req.ProductID)
	if err != nil || !product.IsActive {
		s.logger.Warn("checkout for unknown or inactive product", "product_id", req.ProductID)
		return nil, internal.ErrProductNotFound
	}

	charge, err := s.createCharge(ctx, product, req.Buyer)
	if err != nil {
		return nil, err
	}

	payload := s.resolvePayload(ctx, charge)

	session := &checkoutmodel.CheckoutSession{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		SellerID:    product.SellerID,
		AmountCents: product.PriceCents,
		Gateway:     s.gateway.Name(),
		GatewayID:   charge.ID,
		Status:      checkoutmodel.StatusPending,
		PixCode:     payload.PixCode,
		PixQRCode:   payload.PixQRCode,
		HostedURL:   payload.HostedURL,
		BuyerEmail:  req.Buyer.Email,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.sessions.Create(session); err != nil {
		// The charge exists at the gateway but has no local session; its
		// confirmation will land on the unknown-charge webhook path.
		s.logger.Error("failed to persist checkout session",
			"gateway_id", charge.ID,
			"product_id", product.ID,
			"error", err)
		return nil, internal.NewInternalError("failed to persist checkout session", err)
	}

	s.logger.Info("checkout session created",
		"session_id", session.ID,
		"product_id", product.ID,
		"gateway", session.Gateway,
		"gateway_id", charge.ID,
		"amount_cents", session.AmountCents,
		"split_applied", charge.SplitApplied)

	return &CreateSessionResponse{
		SessionID:   session.ID,
		AmountCents: session.AmountCents,
		PaymentPayload: PaymentPayloadDTO{
			PixCode:   payload.PixCode,
			PixQRCode: payload.PixQRCode,
			HostedURL: payload.HostedURL,
		},
	}, nil
}

func (s *Service) createCharge(ctx context.Context, product *productmodel.Product, buyer BuyerInfo) (*gateway.Charge, error) {
	var walletID string
	if s.gateway.SupportsSplit() {
		var err error
		walletID, err = s.provisioner.EnsureAccount(ctx, product.SellerID)
		if err != nil {
			return nil, err
		}
	}

	customerID, err := s.gateway.CreateCustomer(ctx, gateway.Customer{
		Name:  buyer.Name,
		Email: buyer.Email,
		Phone: validation.OnlyDigits(buyer.Phone),
		TaxID: validation.OnlyDigits(buyer.TaxID),
	})
	if err != nil {
		return nil, internal.NewGatewayError("Payment could not be initiated", err)
	}

	charge, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		CustomerID:     customerID,
		ExternalRef:    product.ID,
		AmountCents:    product.PriceCents,
		Description:    fmt.Sprintf("Payment: %s", product.Title),
		SellerWalletID: walletID,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrWalletInvalid) {
			// Self-heal: the stored wallet is gone at the provider. Clear
			// it and tell the buyer to retry instead of looping here.
			if resetErr := s.provisioner.ResetAccount(ctx, product.SellerID); resetErr != nil {
				s.logger.Error("wallet reset failed", "seller_id", product.SellerID, "error", resetErr)
			}
			return nil, internal.ErrWalletReset
		}
		return nil, internal.NewGatewayError("Payment could not be initiated", err)
	}

	return charge, nil
}

// resolvePayload merges the payload returned inline with the charge and the
// best-effort payload endpoint. A fetch failure leaves the fields empty;
// the charge itself stays valid.
func (s *Service) resolvePayload(ctx context.Context, charge *gateway.Charge) gateway.PaymentPayload {
	payload := gateway.PaymentPayload{
		PixCode:   charge.PixCode,
		PixQRCode: charge.PixQRCode,
		HostedURL: charge.HostedURL,
	}
	if payload.PixCode != "" {
		return payload
	}

	fetched, err := s.gateway.FetchPaymentPayload(ctx, charge.ID)
	if err != nil {
		s.logger.Warn("payment payload fetch failed, returning charge without payload",
			"gateway_id", charge.ID,
			"error", err)
		return payload
	}
	payload.PixCode = fetched.PixCode
	payload.PixQRCode = fetched.PixQRCode
	if fetched.HostedURL != "" {
		payload.HostedURL = fetched.HostedURL
	}
	return payload
}

func (s *Service) GetStatus(ctx context.Context, sessionID string) (*SessionStatusResponse, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrSessionNotFound
		}
		return nil, internal.NewInternalError("failed to load checkout session", err)
	}

	return &SessionStatusResponse{
		Status:      session.Status,
		AmountCents: session.AmountCents,
		ProductID:   session.ProductID,
	}, nil
}
