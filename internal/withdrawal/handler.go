package withdrawal

import (
	"encoding/json"
	"log/slog"
	"net/http"

	internal "github.com/diogopimentels/capicash/internal"
	"github.com/diogopimentels/capicash/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/withdrawals", h.Create)
	r.Get("/withdrawals", h.History)
	r.Delete("/withdrawals/{withdrawalID}", h.Cancel)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sellerID := internal.SellerIDFromContext(r.Context())
	if sellerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	var req CreateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dto, err := h.service.Request(r.Context(), sellerID, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sellerID := internal.SellerIDFromContext(r.Context())
	if sellerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	resp, err := h.service.History(r.Context(), sellerID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	sellerID := internal.SellerIDFromContext(r.Context())
	if sellerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	withdrawalID := chi.URLParam(r, "withdrawalID")
	dto, err := h.service.Cancel(r.Context(), sellerID, withdrawalID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto)
}
