package payment

import (
	"time"

	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Payment is one charge attempt: a one-time charge, a recurring cycle or an org invoice
type Payment struct {
	ID string `db:"id" json:"id"`
	// AccountID is the payer of record. For org invoices it is the admin who triggered it.
	AccountID      string                `db:"account_id" json:"account_id"`
	SubscriptionID *string               `db:"subscription_id" json:"subscription_id,omitempty"`
	LabelID        *string               `db:"label_id" json:"label_id,omitempty"`
	Amount         decimal.Decimal       `db:"amount" json:"amount"`
	Currency       string                `db:"currency" json:"currency"`
	Provider       types.PaymentProvider `db:"provider" json:"provider"`
	Status         types.PaymentStatus   `db:"status" json:"status"`
	// ExternalID is the provider reference, unique per provider
	ExternalID    *string    `db:"external_id" json:"external_id,omitempty"`
	InvoiceNumber string     `db:"invoice_number" json:"invoice_number"`
	CheckoutURL   *string    `db:"checkout_url" json:"checkout_url,omitempty"`
	Metadata      Metadata   `db:"metadata" json:"metadata"`
	PaidAt        *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	FailedAt      *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	FailureReason *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	Version       int        `db:"version" json:"version"`

	types.BaseModel
}

// EffectiveStatus layers AWAITING_APPROVAL over a pending org invoice
func (p *Payment) EffectiveStatus() types.PaymentStatus {
	if p.Status == types.PaymentStatusPending && p.Metadata.IsAwaitingApproval() {
		return types.PaymentStatusAwaitingApproval
	}
	return p.Status
}

func (p *Payment) IsTerminal() bool {
	return p.Status.IsTerminal()
}

func (p *Payment) IsOrgInvoice() bool {
	return p.Metadata.Mode == types.PaymentModeOrgInvoice
}

// MarkPaid moves a pending payment to PAID
func (p *Payment) MarkPaid(now time.Time) {
	p.Status = types.PaymentStatusPaid
	p.PaidAt = &now
	p.FailedAt = nil
	p.FailureReason = nil
}

// MarkFailed moves a pending payment to FAILED
func (p *Payment) MarkFailed(now time.Time, reason string) {
	p.Status = types.PaymentStatusFailed
	p.FailedAt = &now
	if reason != "" {
		p.FailureReason = lo.ToPtr(reason)
	}
}

func (p *Payment) GetSubscriptionID() string {
	return lo.FromPtr(p.SubscriptionID)
}

func (p *Payment) GetExternalID() string {
	return lo.FromPtr(p.ExternalID)
}
