package checkout

import (
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/diogopimentels/capicash/internal"
	"github.com/diogopimentels/capicash/internal/transport"
	"github.com/go-chi/chi"
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

// CreateSession handles POST /api/v1/checkout
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("CreateSession: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		h.Logger.Error("CreateSession: service error", "error", err, "product_id", req.ProductID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// GetStatus handles GET /api/v1/checkout/{sessionID}
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		h.HandleError(w, errors.NewValidationError("session id is required", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.GetStatus(r.Context(), sessionID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
