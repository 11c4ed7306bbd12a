package webhook

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/diogopimentels/capicash/internal/transport"
	"github.com/go-chi/chi"
)

// maxBodyBytes caps webhook payload reads. Provider envelopes are small;
// anything larger is not a legitimate delivery.
const maxBodyBytes = 1 << 20

// GatewayEndpoint bundles the verifier and parser for one provider's
// webhook route.
type GatewayEndpoint struct {
	Verifier Verifier
	Parser   Parser
}

type Handler struct {
	*transport.BaseHandler
	reconciler ServiceAPI
	endpoints  map[string]GatewayEndpoint
}

func NewHandler(reconciler ServiceAPI, endpoints map[string]GatewayEndpoint, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		reconciler:  reconciler,
		endpoints:   endpoints,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/{gateway}", h.Receive)
}

// Receive authenticates and absorbs one provider notification. Once the
// delivery is authenticated it gets a 200 so the provider stops
// redelivering; a malformed payload would fail the same way on every
// redelivery, so it is acknowledged and logged rather than rejected. Only
// authentication failures and storage errors return non-2xx, which
// providers retry.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	gatewayName := chi.URLParam(r, "gateway")
	endpoint, ok := h.endpoints[gatewayName]
	if !ok {
		h.WriteError(w, http.StatusNotFound, "unknown gateway")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := endpoint.Verifier.Verify(r, body); err != nil {
		h.Logger.Warn("webhook signature rejected",
			"gateway", gatewayName,
			"remote_addr", r.RemoteAddr)
		h.WriteError(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	event, err := endpoint.Parser(body)
	if err != nil {
		h.Logger.Warn("malformed webhook payload",
			"gateway", gatewayName,
			"error", err)
		h.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"received": true,
			"outcome":  string(OutcomeMalformed),
		})
		return
	}

	outcome, err := h.reconciler.Process(r.Context(), gatewayName, event)
	if err != nil {
		h.Logger.Error("webhook reconciliation failed",
			"gateway", gatewayName,
			"event_type", event.Type,
			"charge_id", event.ChargeID,
			"error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"received": true,
		"outcome":  string(outcome),
	})
}
