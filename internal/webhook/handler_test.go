package webhook_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	checkoutmodel "github.com/diogopimentels/capicash/internal/core/datamodel/checkout"
	"github.com/diogopimentels/capicash/internal/webhook"
	"github.com/go-chi/chi"
)

var _ = Describe("Handler", func() {
	var (
		sessions *mockSessionRepository
		store    *mockLedgerStore
		router   *chi.Mux
	)

	const (
		asaasSecret   = "whk-secret"
		abacateSecret = "hmac-secret"
	)

	BeforeEach(func() {
		sessions = newMockSessionRepository()
		store = newMockLedgerStore()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		reconciler := webhook.NewReconciler(sessions, store, nil, logger)

		handler := webhook.NewHandler(reconciler, map[string]webhook.GatewayEndpoint{
			"asaas": {
				Verifier: webhook.NewSharedSecretVerifier("asaas-access-token", asaasSecret),
				Parser:   webhook.ParseAsaasEvent,
			},
			"abacate": {
				Verifier: webhook.NewHMACVerifier("X-Webhook-Signature", abacateSecret),
				Parser:   webhook.ParseAbacateEvent,
			},
		}, logger)

		router = chi.NewRouter()
		handler.RegisterRoutes(router)
	})

	addSession := func(chargeID string) {
		Expect(sessions.Create(&checkoutmodel.CheckoutSession{
			ID:          "sess-1",
			SellerID:    "seller-1",
			ProductID:   "prod-1",
			AmountCents: 10000,
			GatewayID:   chargeID,
			Status:      checkoutmodel.StatusPending,
		})).To(Succeed())
	}

	post := func(gateway string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/"+gateway, bytes.NewReader(body))
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	Context("asaas deliveries", func() {
		body := []byte(`{"event":"PAYMENT_RECEIVED","payment":{"id":"pay_1"}}`)

		It("settles an authenticated confirmation", func() {
			addSession("pay_1")

			rec := post("asaas", body, map[string]string{"asaas-access-token": asaasSecret})
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["outcome"]).To(Equal("settled"))
			Expect(store.settled).To(HaveKey("sess-1"))
		})

		It("rejects a missing token", func() {
			addSession("pay_1")

			rec := post("asaas", body, nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(store.settled).To(BeEmpty())
		})

		It("rejects a wrong token", func() {
			addSession("pay_1")

			rec := post("asaas", body, map[string]string{"asaas-access-token": "nope"})
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(store.settled).To(BeEmpty())
		})

		It("acknowledges duplicates without a second settlement", func() {
			addSession("pay_1")
			headers := map[string]string{"asaas-access-token": asaasSecret}

			Expect(post("asaas", body, headers).Code).To(Equal(http.StatusOK))
			rec := post("asaas", body, headers)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["outcome"]).To(Equal("duplicate"))
		})

		It("acknowledges unknown charges", func() {
			rec := post("asaas", body, map[string]string{"asaas-access-token": asaasSecret})
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["outcome"]).To(Equal("unknown_charge"))
		})

		It("acknowledges authenticated malformed payloads without settling", func() {
			addSession("pay_1")

			rec := post("asaas", []byte(`{"event":`), map[string]string{"asaas-access-token": asaasSecret})
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["outcome"]).To(Equal("malformed"))
			Expect(store.settled).To(BeEmpty())
		})

		It("returns a server error when settlement storage fails", func() {
			addSession("pay_1")
			store.settleError = context.DeadlineExceeded

			rec := post("asaas", body, map[string]string{"asaas-access-token": asaasSecret})
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Context("abacate deliveries", func() {
		body := []byte(`{"event":"billing.paid","data":{"billing":{"id":"bill_1"}}}`)

		sign := func(payload []byte) string {
			mac := hmac.New(sha256.New, []byte(abacateSecret))
			mac.Write(payload)
			return hex.EncodeToString(mac.Sum(nil))
		}

		It("settles a correctly signed confirmation", func() {
			addSession("bill_1")

			rec := post("abacate", body, map[string]string{"X-Webhook-Signature": sign(body)})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(store.settled).To(HaveKey("sess-1"))
		})

		It("rejects a signature computed over different bytes", func() {
			addSession("bill_1")

			rec := post("abacate", body, map[string]string{"X-Webhook-Signature": sign([]byte("tampered"))})
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(store.settled).To(BeEmpty())
		})
	})

	It("rejects unknown gateways", func() {
		rec := post("stripe", []byte(`{}`), nil)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
