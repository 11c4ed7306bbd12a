package checkout_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/diogopimentels/capicash/internal"
	"github.com/diogopimentels/capicash/internal/checkout"
	checkoutmodel "github.com/diogopimentels/capicash/internal/core/datamodel/checkout"
	productmodel "github.com/diogopimentels/capicash/internal/core/datamodel/product"
	providermodel "github.com/diogopimentels/capicash/internal/core/datamodel/provider"
	"github.com/diogopimentels/capicash/internal/gateway"
	"gorm.io/gorm"
)

func TestCheckout(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Checkout Suite")
}

type mockSessionRepository struct {
	sessions    map[string]*checkoutmodel.CheckoutSession
	createError error
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*checkoutmodel.CheckoutSession)}
}

func (m *mockSessionRepository) Create(session *checkoutmodel.CheckoutSession) error {
	if m.createError != nil {
		return m.createError
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionRepository) GetByID(id string) (*checkoutmodel.CheckoutSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (m *mockSessionRepository) GetByGatewayID(gatewayID string) (*checkoutmodel.CheckoutSession, error) {
	for _, s := range m.sessions {
		if s.GatewayID == gatewayID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type mockProductRepository struct {
	products map[string]*productmodel.Product
}

func (m *mockProductRepository) GetByID(id string) (*productmodel.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

type mockGateway struct {
	supportsSplit  bool
	customerID     string
	customerError  error
	charge         *gateway.Charge
	chargeError    error
	chargeRequests []gateway.ChargeRequest
	payload        *gateway.PaymentPayload
	payloadError   error
}

func (m *mockGateway) Name() string        { return "asaas" }
func (m *mockGateway) SupportsSplit() bool { return m.supportsSplit }

func (m *mockGateway) CreateCustomer(context.Context, gateway.Customer) (string, error) {
	return m.customerID, m.customerError
}

func (m *mockGateway) CreateCharge(_ context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	m.chargeRequests = append(m.chargeRequests, req)
	if m.chargeError != nil {
		return nil, m.chargeError
	}
	return m.charge, nil
}

func (m *mockGateway) FetchPaymentPayload(context.Context, string) (*gateway.PaymentPayload, error) {
	if m.payloadError != nil {
		return nil, m.payloadError
	}
	return m.payload, nil
}

type mockProvisioner struct {
	walletID    string
	ensureError error
	resets      []string
}

func (m *mockProvisioner) EnsureAccount(context.Context, string) (string, error) {
	return m.walletID, m.ensureError
}

func (m *mockProvisioner) ResetAccount(_ context.Context, sellerID string) error {
	m.resets = append(m.resets, sellerID)
	return nil
}

func (m *mockProvisioner) GetAccount(context.Context, string) (*providermodel.ProviderAccount, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProvisioner) UpdatePayoutKey(context.Context, string, string, string) error {
	return errors.New("not implemented")
}

var _ = Describe("Service", func() {
	var (
		sessions    *mockSessionRepository
		products    *mockProductRepository
		gw          *mockGateway
		provisioner *mockProvisioner
		service     *checkout.Service
		ctx         context.Context
	)

	validRequest := func() *checkout.CreateSessionRequest {
		return &checkout.CreateSessionRequest{
			ProductID: "prod-1",
			Buyer: checkout.BuyerInfo{
				Name:  "Ana Buyer",
				Email: "ana@mail.com",
				Phone: "(11) 98877-6655",
				TaxID: "529.982.247-25",
			},
		}
	}

	BeforeEach(func() {
		sessions = newMockSessionRepository()
		products = &mockProductRepository{products: map[string]*productmodel.Product{
			"prod-1": {
				ID:         "prod-1",
				SellerID:   "seller-1",
				Title:      "Go Backend Course",
				PriceCents: 14900,
				ContentURL: "https://cdn.test/content",
				IsActive:   true,
			},
			"prod-off": {
				ID:         "prod-off",
				SellerID:   "seller-1",
				Title:      "Retired",
				PriceCents: 900,
				IsActive:   false,
			},
		}}
		gw = &mockGateway{
			supportsSplit: true,
			customerID:    "cus_1",
			charge: &gateway.Charge{
				ID:           "pay_1",
				HostedURL:    "https://asaas.test/i/pay_1",
				SplitApplied: true,
			},
			payload: &gateway.PaymentPayload{
				PixCode:   "00020126pix",
				PixQRCode: "aGVsbG8=",
			},
		}
		provisioner = &mockProvisioner{walletID: "wal_1"}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = checkout.NewService(sessions, products, gw, provisioner, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("creates a pending session priced from the product", func() {
			resp, err := service.Create(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.AmountCents).To(Equal(int64(14900)))
			Expect(resp.PaymentPayload.PixCode).To(Equal("00020126pix"))
			Expect(resp.PaymentPayload.HostedURL).To(Equal("https://asaas.test/i/pay_1"))

			session := sessions.sessions[resp.SessionID]
			Expect(session).NotTo(BeNil())
			Expect(session.Status).To(Equal(checkoutmodel.StatusPending))
			Expect(session.SellerID).To(Equal("seller-1"))
			Expect(session.GatewayID).To(Equal("pay_1"))
			Expect(session.BuyerEmail).To(Equal("ana@mail.com"))
		})

		It("routes the seller wallet into the charge", func() {
			_, err := service.Create(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())

			Expect(gw.chargeRequests).To(HaveLen(1))
			Expect(gw.chargeRequests[0].SellerWalletID).To(Equal("wal_1"))
			Expect(gw.chargeRequests[0].AmountCents).To(Equal(int64(14900)))
		})

		It("skips provisioning on gateways without split support", func() {
			gw.supportsSplit = false
			provisioner.ensureError = errors.New("should not be called")

			_, err := service.Create(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(gw.chargeRequests[0].SellerWalletID).To(BeEmpty())
		})

		It("rejects unknown products", func() {
			req := validRequest()
			req.ProductID = "prod-ghost"

			_, err := service.Create(ctx, req)
			Expect(err).To(MatchError(internal.ErrProductNotFound))
		})

		It("rejects inactive products", func() {
			req := validRequest()
			req.ProductID = "prod-off"

			_, err := service.Create(ctx, req)
			Expect(err).To(MatchError(internal.ErrProductNotFound))
		})

		It("rejects requests without a buyer email", func() {
			req := validRequest()
			req.Buyer.Email = ""

			_, err := service.Create(ctx, req)
			Expect(err).To(HaveOccurred())
			Expect(gw.chargeRequests).To(BeEmpty())
		})

		It("resets the seller wallet when the gateway reports it invalid", func() {
			gw.chargeError = gateway.ErrWalletInvalid

			_, err := service.Create(ctx, validRequest())
			Expect(err).To(MatchError(internal.ErrWalletReset))
			Expect(provisioner.resets).To(ConsistOf("seller-1"))
		})

		It("wraps other charge failures as gateway errors", func() {
			gw.chargeError = errors.New("boom")

			_, err := service.Create(ctx, validRequest())
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeGatewayError))
			Expect(provisioner.resets).To(BeEmpty())
		})

		It("still answers when the payload fetch fails", func() {
			gw.payloadError = errors.New("qr endpoint down")
			gw.payload = nil

			resp, err := service.Create(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.PaymentPayload.PixCode).To(BeEmpty())
			Expect(resp.PaymentPayload.HostedURL).To(Equal("https://asaas.test/i/pay_1"))
		})

		It("keeps the inline payload when the charge already carries one", func() {
			gw.charge.PixCode = "inline-pix"
			gw.payloadError = errors.New("should not be called")

			resp, err := service.Create(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.PaymentPayload.PixCode).To(Equal("inline-pix"))
		})

		It("surfaces persistence failures", func() {
			sessions.createError = errors.New("db down")

			_, err := service.Create(ctx, validRequest())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetStatus", func() {
		It("returns the session status", func() {
			resp, err := service.Create(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())

			status, err := service.GetStatus(ctx, resp.SessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Status).To(Equal(checkoutmodel.StatusPending))
			Expect(status.ProductID).To(Equal("prod-1"))
			Expect(status.AmountCents).To(Equal(int64(14900)))
		})

		It("maps missing sessions onto not found", func() {
			_, err := service.GetStatus(ctx, "nope")
			Expect(err).To(MatchError(internal.ErrSessionNotFound))
		})
	})
})
