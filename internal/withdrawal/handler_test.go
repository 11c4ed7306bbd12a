package withdrawal_test

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
	"github.com/diogopimentels/capicash/internal/transport/middleware"
	"github.com/diogopimentels/capicash/internal/withdrawal"
	"github.com/go-chi/chi"
)

type mockWithdrawalService struct {
	requestResp  *withdrawal.WithdrawalDTO
	requestError error
	historyResp  *withdrawal.HistoryResponse
	cancelResp   *withdrawal.WithdrawalDTO
	cancelError  error
	lastSellerID string
}

func (m *mockWithdrawalService) Request(_ context.Context, sellerID string, _ *withdrawal.CreateWithdrawalRequest) (*withdrawal.WithdrawalDTO, error) {
	m.lastSellerID = sellerID
	if m.requestError != nil {
		return nil, m.requestError
	}
	return m.requestResp, nil
}

func (m *mockWithdrawalService) History(_ context.Context, sellerID string) (*withdrawal.HistoryResponse, error) {
	m.lastSellerID = sellerID
	return m.historyResp, nil
}

func (m *mockWithdrawalService) Cancel(_ context.Context, sellerID, _ string) (*withdrawal.WithdrawalDTO, error) {
	m.lastSellerID = sellerID
	if m.cancelError != nil {
		return nil, m.cancelError
	}
	return m.cancelResp, nil
}

var _ = Describe("Handler", func() {
	var (
		service *mockWithdrawalService
		router  *chi.Mux
	)

	BeforeEach(func() {
		service = &mockWithdrawalService{
			requestResp: &withdrawal.WithdrawalDTO{ID: "wd-1", AmountCents: 3000, Status: "REQUESTED"},
			historyResp: &withdrawal.HistoryResponse{AvailableCents: 7000},
			cancelResp:  &withdrawal.WithdrawalDTO{ID: "wd-1", Status: "FAILED"},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := withdrawal.NewHandler(service, logger)

		router = chi.NewRouter()
		router.Group(func(r chi.Router) {
			r.Use(middleware.SellerID)
			handler.RegisterRoutes(r)
		})
	})

	do := func(method, path string, body []byte, sellerID string) *httptest.ResponseRecorder {
		var reader *bytes.Reader
		if body == nil {
			reader = bytes.NewReader(nil)
		} else {
			reader = bytes.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		if sellerID != "" {
			req.Header.Set("X-Seller-ID", sellerID)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("rejects requests without the seller header", func() {
		rec := do(http.MethodGet, "/withdrawals", nil, "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("resolves the seller from the header on creation", func() {
		rec := do(http.MethodPost, "/withdrawals", []byte(`{"amount_cents":3000}`), "seller-1")
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(service.lastSellerID).To(Equal("seller-1"))

		var dto withdrawal.WithdrawalDTO
		Expect(json.Unmarshal(rec.Body.Bytes(), &dto)).To(Succeed())
		Expect(dto.ID).To(Equal("wd-1"))
	})

	It("maps an insufficient balance onto a validation status", func() {
		service.requestError = internal.ErrInsufficientBalance

		rec := do(http.MethodPost, "/withdrawals", []byte(`{"amount_cents":9999999}`), "seller-1")
		Expect(rec.Code).To(Equal(internal.ErrInsufficientBalance.StatusCode))
	})

	It("returns the history for the acting seller", func() {
		rec := do(http.MethodGet, "/withdrawals", nil, "seller-1")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp withdrawal.HistoryResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.AvailableCents).To(Equal(int64(7000)))
	})

	It("cancels through the DELETE route", func() {
		rec := do(http.MethodDelete, "/withdrawals/wd-1", nil, "seller-1")
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("answers 404 when cancelling an unknown withdrawal", func() {
		service.cancelError = internal.ErrWithdrawalNotFound

		rec := do(http.MethodDelete, "/withdrawals/ghost", nil, "seller-1")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
