package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diogopimentels/capicash/internal/core/events"
)

// EventHandler delivers purchased content to the buyer once settlement
// commits. Delivery is a simulated email for now: the content link is
// logged with the buyer address.
type EventHandler struct {
	products ProductRepository
	logger   *slog.Logger
}

func NewEventHandler(products ProductRepository, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		products: products,
		logger:   logger,
	}
}

func (h *EventHandler) HandlePaymentSettled(ctx context.Context, event events.Event) error {
	settled, ok := event.(*events.PaymentSettledEvent)
	if !ok {
		h.logger.Error("invalid event type for payment settled handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentSettledEvent, got %T", event)
	}

	product, err := h.products.GetByID(settled.ProductID)
	if err != nil {
		h.logger.Error("failed to load product for delivery",
			"error", err,
			"product_id", settled.ProductID,
			"session_id", settled.SessionID)
		return fmt.Errorf("load product %s for delivery: %w", settled.ProductID, err)
	}

	h.logger.Info("delivering content to buyer",
		"session_id", settled.SessionID,
		"buyer_email", settled.BuyerEmail,
		"product_id", product.ID,
		"product_title", product.Title,
		"content_url", product.ContentURL)

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentSettled, h.HandlePaymentSettled)

	h.logger.Info("checkout event handlers registered",
		"handlers", []string{events.EventTypePaymentSettled})
}
