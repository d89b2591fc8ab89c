package dto

import "github.com/flexprice/recurring/internal/types"

// WebhookResult is what a webhook delivery was reconciled into
type WebhookResult struct {
	Provider  types.PaymentProvider   `json:"provider"`
	EventType types.ProviderEventType `json:"event_type,omitempty"`
	// Outcome is one of applied, noop, ignored, replayed, failed
	Outcome string `json:"outcome"`
}
