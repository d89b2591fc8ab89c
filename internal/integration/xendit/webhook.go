package xendit

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// NormalizeWebhook verifies the callback token and maps the callback status
func (c *Client) NormalizeWebhook(ctx context.Context, headers http.Header, payload []byte) (*base.NormalizedEvent, error) {
	if c.config.CallbackToken == "" {
		return nil, base.NotConfigured(c.Name())
	}

	provided := headers.Get(CallbackTokenHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(c.config.CallbackToken)) != 1 {
		c.logger.Warnw("xendit callback token mismatch", "has_token", provided != "")
		return nil, base.InvalidSignature(nil, c.Name())
	}

	var cb CallbackPayload
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, base.InvalidPayload(err, c.Name())
	}
	if cb.ID == "" || cb.Status == "" {
		return nil, base.InvalidPayload(
			ierr.NewError("callback is missing id or status").Mark(ierr.ErrValidation), c.Name())
	}

	event := &base.NormalizedEvent{
		Type:        mapCallback(&cb),
		Provider:    c.Name(),
		EventID:     headers.Get(WebhookIDHeader),
		ExternalID:  cb.ID,
		AgreementID: lo.Ternary(cb.isAgreementCallback(), cb.ID, cb.RecurringPaymentID),
		Amount:      callbackAmount(&cb),
		Currency:    types.NormalizeCurrency(cb.Currency),
		OccurredAt:  callbackTime(&cb),
		NativeType:  cb.Status,
		Raw:         payload,
	}
	if event.Type.IsFailure() {
		event.FailureReason = lo.Ternary(cb.FailureCode != "", cb.FailureCode, strings.ToLower(cb.Status))
	}

	if event.Type == types.EventUnknown {
		c.logger.Infow("unmapped xendit callback",
			"id", cb.ID,
			"status", cb.Status,
			"recurring_payment_id", cb.RecurringPaymentID)
	}
	return event, nil
}

// mapCallback maps a callback status onto the normalized event set
func mapCallback(cb *CallbackPayload) types.ProviderEventType {
	status := strings.ToUpper(cb.Status)

	if cb.isAgreementCallback() {
		// ACTIVE is acknowledged only: the first paid cycle invoice activates the agreement
		if status == StatusStopped {
			return types.EventRecurringDeactivated
		}
		return types.EventUnknown
	}

	if cb.RecurringPaymentID != "" {
		switch status {
		case StatusPaid, StatusSettled:
			return types.EventRecurringCycleSucceeded
		case StatusFailed, StatusExpired:
			return types.EventRecurringCycleFailed
		}
		return types.EventUnknown
	}

	switch status {
	case StatusPaid, StatusSettled:
		return types.EventChargePaid
	case StatusExpired:
		return types.EventChargeExpired
	case StatusFailed:
		return types.EventChargeFailed
	}
	return types.EventUnknown
}

func callbackAmount(cb *CallbackPayload) decimal.Decimal {
	if cb.PaidAmount != nil && cb.PaidAmount.IsPositive() {
		return *cb.PaidAmount
	}
	return lo.FromPtr(cb.Amount)
}

func callbackTime(cb *CallbackPayload) time.Time {
	for _, t := range []*time.Time{cb.PaidAt, cb.Updated, cb.Created} {
		if t != nil && !t.IsZero() {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
