package checkout_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/diogopimentels/capicash/internal"
	"github.com/diogopimentels/capicash/internal/checkout"
	"github.com/go-chi/chi"
)

type mockCheckoutService struct {
	createResp  *checkout.CreateSessionResponse
	createError error
	statusResp  *checkout.SessionStatusResponse
	statusError error
}

func (m *mockCheckoutService) Create(context.Context, *checkout.CreateSessionRequest) (*checkout.CreateSessionResponse, error) {
	if m.createError != nil {
		return nil, m.createError
	}
	return m.createResp, nil
}

func (m *mockCheckoutService) GetStatus(context.Context, string) (*checkout.SessionStatusResponse, error) {
	if m.statusError != nil {
		return nil, m.statusError
	}
	return m.statusResp, nil
}

var _ = Describe("Handler", func() {
	var (
		service *mockCheckoutService
		router  *chi.Mux
	)

	BeforeEach(func() {
		service = &mockCheckoutService{
			createResp: &checkout.CreateSessionResponse{
				SessionID:   "sess-1",
				AmountCents: 14900,
				PaymentPayload: checkout.PaymentPayloadDTO{
					PixCode: "00020126pix",
				},
			},
			statusResp: &checkout.SessionStatusResponse{
				Status:      "PENDING",
				AmountCents: 14900,
				ProductID:   "prod-1",
			},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := checkout.NewHandler(service, logger)

		router = chi.NewRouter()
		router.Post("/checkout", handler.CreateSession)
		router.Get("/checkout/{sessionID}", handler.GetStatus)
	})

	Describe("POST /checkout", func() {
		It("answers 201 with the payment payload", func() {
			body, _ := json.Marshal(map[string]interface{}{
				"product_id": "prod-1",
				"buyer":      map[string]string{"name": "Ana", "email": "ana@mail.com"},
			})
			req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))

			var resp checkout.CreateSessionResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.SessionID).To(Equal("sess-1"))
			Expect(resp.PaymentPayload.PixCode).To(Equal("00020126pix"))
		})

		It("answers 400 on a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader([]byte("{")))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps service errors through the error envelope", func() {
			service.createError = internal.ErrProductNotFound

			req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader([]byte(`{"product_id":"x"}`)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("answers 409 when the seller wallet was reset", func() {
			service.createError = internal.ErrWalletReset

			req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader([]byte(`{"product_id":"x"}`)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("GET /checkout/{sessionID}", func() {
		It("answers 200 with the session status", func() {
			req := httptest.NewRequest(http.MethodGet, "/checkout/sess-1", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp checkout.SessionStatusResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal("PENDING"))
		})

		It("answers 404 for unknown sessions", func() {
			service.statusError = internal.ErrSessionNotFound

			req := httptest.NewRequest(http.MethodGet, "/checkout/ghost", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
