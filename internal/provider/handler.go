package provider

import (
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/diogopimentels/capicash/internal"
	"github.com/diogopimentels/capicash/internal/transport"
)

type Handler struct {
	transport.BaseHandler
	Service ServiceAPI
	Logger  *slog.Logger
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  logger,
	}
}

type UpdatePayoutKeyRequest struct {
	PayoutKey     string `json:"payout_key"`
	PayoutKeyType string `json:"payout_key_type"`
}

// UpdatePayoutKey handles PUT /api/v1/sellers/me/payout-key
func (h *Handler) UpdatePayoutKey(w http.ResponseWriter, r *http.Request) {
	sellerID := errors.SellerIDFromContext(r.Context())
	if sellerID == "" {
		h.HandleError(w, errors.NewUnauthorizedError("seller identification required", errors.ErrCodeSellerNotFound))
		return
	}

	var req UpdatePayoutKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("UpdatePayoutKey: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	if req.PayoutKey == "" || req.PayoutKeyType == "" {
		h.HandleError(w, errors.NewValidationError("payout_key and payout_key_type are required", errors.ErrCodeValidationFailed))
		return
	}

	if err := h.Service.UpdatePayoutKey(r.Context(), sellerID, req.PayoutKey, req.PayoutKeyType); err != nil {
		h.Logger.Error("UpdatePayoutKey: service error", "error", err, "seller_id", sellerID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "payout key updated",
	})
}
