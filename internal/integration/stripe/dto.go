package stripe

import (
	"encoding/json"

	"github.com/flexprice/recurring/internal/types"
	"github.com/shopspring/decimal"
)

// Stripe event types the adapter maps
const (
	EventCheckoutSessionCompleted        = "checkout.session.completed"
	EventCheckoutSessionAsyncSucceeded   = "checkout.session.async_payment_succeeded"
	EventCheckoutSessionAsyncFailed      = "checkout.session.async_payment_failed"
	EventCheckoutSessionExpired          = "checkout.session.expired"
	EventInvoicePaid                     = "invoice.paid"
	EventInvoicePaymentFailed            = "invoice.payment_failed"
	EventCustomerSubscriptionDeleted     = "customer.subscription.deleted"
	EventCustomerSubscriptionPaused      = "customer.subscription.paused"
	billingReasonSubscriptionCycle       = "subscription_cycle"
	checkoutModePayment                  = "payment"
	checkoutModeSubscription             = "subscription"
	checkoutPaymentStatusPaid            = "paid"
	checkoutPaymentStatusNoPaymentNeeded = "no_payment_required"

	// SignatureHeader carries the Stripe webhook signature
	SignatureHeader = "Stripe-Signature"

	// metadata keys written on sessions so webhooks can be traced back
	metadataPaymentID = "recurring_payment_id"
	metadataAccountID = "recurring_account_id"
)

// checkoutSession is the subset of a checkout.session object the adapter reads
type checkoutSession struct {
	ID                string            `json:"id"`
	Mode              string            `json:"mode"`
	Status            string            `json:"status"`
	PaymentStatus     string            `json:"payment_status"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	ClientReferenceID string            `json:"client_reference_id"`
	Subscription      json.RawMessage   `json:"subscription"`
	Metadata          map[string]string `json:"metadata"`
}

// invoice is the subset of an invoice object the adapter reads. The subscription
// reference moved under parent.subscription_details in newer API versions.
type invoice struct {
	ID            string          `json:"id"`
	BillingReason string          `json:"billing_reason"`
	AmountPaid    int64           `json:"amount_paid"`
	AmountDue     int64           `json:"amount_due"`
	Currency      string          `json:"currency"`
	Subscription  json.RawMessage `json:"subscription"`
	Parent        *struct {
		SubscriptionDetails *struct {
			Subscription json.RawMessage `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
	LastFinalizationError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_finalization_error"`
}

func (i *invoice) subscriptionID() string {
	if id := expandableID(i.Subscription); id != "" {
		return id
	}
	if i.Parent != nil && i.Parent.SubscriptionDetails != nil {
		return expandableID(i.Parent.SubscriptionDetails.Subscription)
	}
	return ""
}

// subscription is the subset of a subscription object the adapter reads
type subscription struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Currency string `json:"currency"`
}

// expandableID reads a reference that is either an id string or an expanded object
func expandableID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}

// toMinorUnits converts an amount to the smallest currency unit Stripe charges in
func toMinorUnits(amount decimal.Decimal, currency string) int64 {
	if types.IsZeroDecimalCurrency(currency) {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// fromMinorUnits converts a Stripe amount back to a decimal in major units
func fromMinorUnits(amount int64, currency string) decimal.Decimal {
	if types.IsZeroDecimalCurrency(currency) {
		return decimal.NewFromInt(amount)
	}
	return decimal.New(amount, -2)
}
