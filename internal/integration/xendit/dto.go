package xendit

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the Xendit API host
	DefaultBaseURL = "https://api.xendit.co"

	// CallbackTokenHeader carries the shared callback verification token
	CallbackTokenHeader = "x-callback-token"

	// IdempotencyKeyHeader deduplicates retried creates on Xendit's side
	IdempotencyKeyHeader = "X-IDEMPOTENCY-KEY"

	// WebhookIDHeader carries the delivery id Xendit retries with
	WebhookIDHeader = "webhook-id"

	invoicesPath  = "/v2/invoices"
	recurringPath = "/recurring_payments"
)

// Invoice statuses reported in callbacks
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusSettled = "SETTLED"
	StatusExpired = "EXPIRED"
	StatusFailed  = "FAILED"

	// recurring agreement statuses
	StatusActive  = "ACTIVE"
	StatusStopped = "STOPPED"
	StatusPaused  = "PAUSED"
)

// CreateInvoiceRequest is the body of POST /v2/invoices
type CreateInvoiceRequest struct {
	ExternalID         string            `json:"external_id"`
	Amount             decimal.Decimal   `json:"amount"`
	Currency           string            `json:"currency"`
	Description        string            `json:"description,omitempty"`
	SuccessRedirectURL string            `json:"success_redirect_url,omitempty"`
	FailureRedirectURL string            `json:"failure_redirect_url,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// InvoiceResponse is the subset of the invoice object we read
type InvoiceResponse struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	InvoiceURL string          `json:"invoice_url"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// CreateRecurringRequest is the body of POST /recurring_payments
type CreateRecurringRequest struct {
	ExternalID         string          `json:"external_id"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Interval           string          `json:"interval"`
	IntervalCount      int             `json:"interval_count"`
	Description        string          `json:"description,omitempty"`
	SuccessRedirectURL string          `json:"success_redirect_url,omitempty"`
	FailureRedirectURL string          `json:"failure_redirect_url,omitempty"`
}

// RecurringResponse is the subset of the recurring payment object we read
type RecurringResponse struct {
	ID                    string `json:"id"`
	ExternalID            string `json:"external_id"`
	Status                string `json:"status"`
	LastCreatedInvoiceURL string `json:"last_created_invoice_url"`
}

// CallbackPayload covers both invoice callbacks and recurring agreement callbacks.
// Invoice callbacks for a recurring agreement carry RecurringPaymentID; agreement
// callbacks carry Interval.
type CallbackPayload struct {
	ID                 string           `json:"id"`
	ExternalID         string           `json:"external_id"`
	Status             string           `json:"status"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	PaidAmount         *decimal.Decimal `json:"paid_amount,omitempty"`
	Currency           string           `json:"currency"`
	PaidAt             *time.Time       `json:"paid_at,omitempty"`
	Updated            *time.Time       `json:"updated,omitempty"`
	Created            *time.Time       `json:"created,omitempty"`
	RecurringPaymentID string           `json:"recurring_payment_id,omitempty"`
	Interval           string           `json:"interval,omitempty"`
	FailureCode        string           `json:"failure_code,omitempty"`
}

// isAgreementCallback reports whether the callback is about the agreement itself
func (p *CallbackPayload) isAgreementCallback() bool {
	return p.RecurringPaymentID == "" && p.Interval != ""
}
