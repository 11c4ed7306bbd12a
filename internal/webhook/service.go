package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diogopimentels/capicash/internal/checkout"
	"github.com/diogopimentels/capicash/internal/core/events"
	"github.com/diogopimentels/capicash/internal/gateway"
	"github.com/diogopimentels/capicash/internal/ledger"
	"gorm.io/gorm"
)

// Outcome classifies how a confirmation event was absorbed. Every outcome
// is terminal: the provider gets a success response and must not redeliver.
type Outcome string

const (
	// OutcomeSettled means this delivery performed the settlement.
	OutcomeSettled Outcome = "settled"
	// OutcomeDuplicate means the session was already settled by an earlier
	// delivery.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeUnknownCharge means no session references the charge. Happens
	// for charges created outside this system or test events.
	OutcomeUnknownCharge Outcome = "unknown_charge"
	// OutcomeIgnored means the event type does not confirm payment.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeMalformed means an authenticated delivery carried a payload
	// we cannot parse. Redelivering the same bytes would never succeed, so
	// the delivery is acknowledged and logged instead of rejected.
	OutcomeMalformed Outcome = "malformed"
)

// ServiceAPI reconciles provider confirmations against the ledger.
type ServiceAPI interface {
	Process(ctx context.Context, gatewayName string, event *Event) (Outcome, error)
}

// Reconciler folds confirmed payments into the ledger exactly once. All the
// idempotency lives in the store's settlement transaction; the reconciler
// just classifies events and publishes the settled event for first-time
// settlements.
type Reconciler struct {
	sessions checkout.SessionRepository
	store    ledger.StoreAPI
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewReconciler(sessions checkout.SessionRepository, store ledger.StoreAPI, eventBus *events.EventBus, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		sessions: sessions,
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (r *Reconciler) Process(ctx context.Context, gatewayName string, event *Event) (Outcome, error) {
	if !event.Confirmed {
		r.logger.Info("ignoring non-confirmation webhook event",
			"gateway", gatewayName,
			"event_type", event.Type,
			"charge_id", event.ChargeID)
		return OutcomeIgnored, nil
	}

	session, err := r.sessions.GetByGatewayID(event.ChargeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("webhook references unknown charge",
				"gateway", gatewayName,
				"event_type", event.Type,
				"charge_id", event.ChargeID)
			return OutcomeUnknownCharge, nil
		}
		return "", fmt.Errorf("lookup session by charge: %w", err)
	}

	gross := session.AmountCents
	applied, err := r.store.Settle(ctx, ledger.SettleParams{
		SessionID:  session.ID,
		SellerID:   session.SellerID,
		ProductID:  session.ProductID,
		GrossCents: gross,
		FeeCents:   gateway.PlatformFeeCents(gross),
		NetCents:   gateway.SellerShareCents(gross),
	})
	if err != nil {
		return "", fmt.Errorf("settle session %s: %w", session.ID, err)
	}

	if !applied {
		r.logger.Info("duplicate confirmation for settled session",
			"gateway", gatewayName,
			"session_id", session.ID,
			"charge_id", event.ChargeID)
		return OutcomeDuplicate, nil
	}

	r.logger.Info("payment settled",
		"gateway", gatewayName,
		"session_id", session.ID,
		"seller_id", session.SellerID,
		"charge_id", event.ChargeID,
		"gross_cents", gross,
		"net_cents", gateway.SellerShareCents(gross))

	if r.eventBus != nil {
		settled := events.NewPaymentSettledEvent(
			session.ID,
			session.SellerID,
			session.ProductID,
			session.BuyerEmail,
			gross,
			gateway.SellerShareCents(gross),
		)
		if err := r.eventBus.Publish(ctx, settled); err != nil {
			r.logger.Error("failed to publish payment settled event",
				"error", err,
				"session_id", session.ID)
		}
	}

	return OutcomeSettled, nil
}
