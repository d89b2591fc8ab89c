package base

import (
	"context"
	"net/http"
	"time"

	"github.com/flexprice/recurring/internal/types"
	"github.com/shopspring/decimal"
)

// Provider is the capability set every payment provider adapter implements.
// Adapters never touch the ledger; they only talk to the provider and translate webhooks.
type Provider interface {
	// Name returns the provider this adapter is registered under
	Name() types.PaymentProvider

	// IsConfigured reports whether credentials were supplied at construction
	IsConfigured() bool

	// CreateCharge creates a one-time charge (invoice or checkout session) for a pending payment
	CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)

	// CreateRecurringAgreement creates a billing agreement the provider charges every period
	CreateRecurringAgreement(ctx context.Context, req *AgreementRequest) (*ChargeResult, error)

	// CancelRecurring stops a billing agreement
	CancelRecurring(ctx context.Context, agreementID string) error

	// NormalizeWebhook verifies and maps a raw webhook into a NormalizedEvent.
	// Unmapped provider events come back with type EventUnknown rather than an error.
	NormalizeWebhook(ctx context.Context, headers http.Header, payload []byte) (*NormalizedEvent, error)
}

// ChargeRequest describes a one-time charge for a pending payment
type ChargeRequest struct {
	PaymentID     string
	AccountID     string
	InvoiceNumber string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	Metadata      map[string]string
	// IdempotencyKey makes retried creates collapse into one provider object
	IdempotencyKey string
}

// AgreementRequest describes a recurring billing agreement
type AgreementRequest struct {
	PaymentID      string
	AccountID      string
	InvoiceNumber  string
	Amount         decimal.Decimal
	Currency       string
	Period         types.BillingPeriod
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

// ChargeResult is what the provider returned for a charge or an agreement
type ChargeResult struct {
	// ExternalID is the provider reference stored on the payment
	ExternalID string
	// AgreementID is set when the provider already issued the recurring agreement reference
	AgreementID string
	// CheckoutURL is where the payer is redirected, empty for offline payments
	CheckoutURL string
	ExpiresAt   *time.Time
}

// NormalizedEvent is the provider-agnostic form of a webhook notification
type NormalizedEvent struct {
	Type     types.ProviderEventType `json:"type"`
	Provider types.PaymentProvider   `json:"provider"`
	// EventID is the provider's own idempotency token for the delivery, when it has one
	EventID string `json:"event_id,omitempty"`
	// ExternalID references the payment the event is about
	ExternalID string `json:"external_id"`
	// AgreementID references the recurring agreement for recurring events
	AgreementID   string          `json:"agreement_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	FailureReason string          `json:"failure_reason,omitempty"`
	// NativeType is the provider's event or status name the event was mapped from
	NativeType string `json:"native_type,omitempty"`
	Raw        []byte `json:"-"`
}

// IdempotencyKey identifies the delivery for the replay guard. The webhook-native token wins when present.
func (e *NormalizedEvent) IdempotencyKey() string {
	if e.EventID != "" {
		return string(e.Provider) + ":" + e.EventID
	}
	return string(e.Provider) + ":" + e.ExternalID + ":" + string(e.Type.Canonical())
}
