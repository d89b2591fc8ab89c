package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/types"
	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// NormalizeWebhook verifies the Stripe signature and maps the event onto the normalized set
func (c *Client) NormalizeWebhook(ctx context.Context, headers http.Header, payload []byte) (*base.NormalizedEvent, error) {
	if c.config.WebhookSecret == "" {
		return nil, base.NotConfigured(c.Name())
	}
	if !json.Valid(payload) {
		return nil, base.InvalidPayload(ierr.NewError("payload is not valid json").Mark(ierr.ErrValidation), c.Name())
	}

	event, err := webhook.ConstructEventWithOptions(payload, headers.Get(SignatureHeader), c.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		c.logger.Warnw("stripe webhook signature verification failed", "error", err)
		return nil, base.InvalidSignature(err, c.Name())
	}

	normalized, err := c.mapEvent(&event)
	if err != nil {
		return nil, base.InvalidPayload(err, c.Name())
	}
	normalized.Provider = c.Name()
	normalized.EventID = event.ID
	normalized.NativeType = string(event.Type)
	normalized.OccurredAt = time.Unix(event.Created, 0).UTC()
	normalized.Raw = payload

	if normalized.Type == types.EventUnknown {
		c.logger.Infow("unhandled stripe webhook event type",
			"event_id", event.ID,
			"type", event.Type)
	}
	return normalized, nil
}

func (c *Client) mapEvent(event *stripeapi.Event) (*base.NormalizedEvent, error) {
	if event.Data == nil {
		return &base.NormalizedEvent{Type: types.EventUnknown}, nil
	}

	switch string(event.Type) {
	case EventCheckoutSessionCompleted, EventCheckoutSessionAsyncSucceeded,
		EventCheckoutSessionAsyncFailed, EventCheckoutSessionExpired:
		var session checkoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, err
		}
		return mapCheckoutSession(string(event.Type), &session), nil

	case EventInvoicePaid, EventInvoicePaymentFailed:
		var inv invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, err
		}
		return mapInvoice(string(event.Type), &inv), nil

	case EventCustomerSubscriptionDeleted, EventCustomerSubscriptionPaused:
		var sub subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, err
		}
		return &base.NormalizedEvent{
			Type:        types.EventRecurringDeactivated,
			ExternalID:  sub.ID,
			AgreementID: sub.ID,
			Currency:    types.NormalizeCurrency(sub.Currency),
		}, nil
	}

	return &base.NormalizedEvent{Type: types.EventUnknown}, nil
}

func mapCheckoutSession(eventType string, session *checkoutSession) *base.NormalizedEvent {
	out := &base.NormalizedEvent{
		Type:       types.EventUnknown,
		ExternalID: session.ID,
		Amount:     fromMinorUnits(session.AmountTotal, session.Currency),
		Currency:   types.NormalizeCurrency(session.Currency),
	}

	switch eventType {
	case EventCheckoutSessionCompleted:
		if session.Mode == checkoutModeSubscription {
			out.Type = types.EventRecurringActivated
			out.AgreementID = expandableID(session.Subscription)
			return out
		}
		// async payment methods complete the session before the money arrives
		if session.PaymentStatus == checkoutPaymentStatusPaid || session.PaymentStatus == checkoutPaymentStatusNoPaymentNeeded {
			out.Type = types.EventChargePaid
		}
	case EventCheckoutSessionAsyncSucceeded:
		out.Type = types.EventChargePaid
	case EventCheckoutSessionAsyncFailed:
		out.Type = types.EventChargeFailed
		out.FailureReason = "async payment failed"
	case EventCheckoutSessionExpired:
		out.Type = types.EventChargeExpired
		out.FailureReason = "checkout session expired"
	}
	return out
}

func mapInvoice(eventType string, inv *invoice) *base.NormalizedEvent {
	out := &base.NormalizedEvent{
		Type:        types.EventUnknown,
		ExternalID:  inv.ID,
		AgreementID: inv.subscriptionID(),
		Currency:    types.NormalizeCurrency(inv.Currency),
	}

	// the first invoice of a subscription is settled through checkout.session.completed
	if inv.BillingReason != billingReasonSubscriptionCycle || out.AgreementID == "" {
		return out
	}

	switch eventType {
	case EventInvoicePaid:
		out.Type = types.EventRecurringCycleSucceeded
		out.Amount = fromMinorUnits(inv.AmountPaid, inv.Currency)
	case EventInvoicePaymentFailed:
		out.Type = types.EventRecurringCycleFailed
		out.Amount = fromMinorUnits(inv.AmountDue, inv.Currency)
		out.FailureReason = "invoice payment failed"
		if inv.LastFinalizationError != nil && inv.LastFinalizationError.Message != "" {
			out.FailureReason = inv.LastFinalizationError.Message
		}
	}
	return out
}
