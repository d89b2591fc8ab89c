package types

import (
	"strings"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/samber/lo"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"

	// PaymentStatusAwaitingApproval is never persisted. It is derived from a PENDING
	// org invoice whose metadata still waits for an operator.
	PaymentStatusAwaitingApproval PaymentStatus = "AWAITING_APPROVAL"
)

// FailureReasonExpired marks a checkout the customer abandoned. Expired payments never
// count toward suspension.
const FailureReasonExpired = "expired"

func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further provider event may change the status
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// PaymentProvider selects the adapter that owns a payment
type PaymentProvider string

const (
	// PaymentProviderXendit is the invoice / one-time-charge style provider
	PaymentProviderXendit PaymentProvider = "xendit"
	// PaymentProviderStripe is the billing-agreement / recurring style provider
	PaymentProviderStripe PaymentProvider = "stripe"
	PaymentProviderManual PaymentProvider = "manual"
)

func (p PaymentProvider) String() string {
	return string(p)
}

func (p PaymentProvider) Validate() error {
	allowed := []PaymentProvider{PaymentProviderXendit, PaymentProviderStripe, PaymentProviderManual}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("unsupported payment provider").
			WithHintf("Unsupported payment provider %q", string(p)).
			WithReportableDetails(map[string]any{
				"provider":          p,
				"allowed_providers": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ParsePaymentProvider accepts provider names in any case, as used in webhook paths
func ParsePaymentProvider(s string) (PaymentProvider, error) {
	p := PaymentProvider(strings.ToLower(strings.TrimSpace(s)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// PaymentMode tags the variant of a payment's metadata
type PaymentMode string

const (
	PaymentModeSimple     PaymentMode = "SIMPLE"
	PaymentModeCycle      PaymentMode = "CYCLE"
	PaymentModeOrgInvoice PaymentMode = "ORG_INVOICE"
)

// CheckoutMode is what the caller asked checkout to do
type CheckoutMode string

const (
	CheckoutModeSubscription CheckoutMode = "subscription"
	CheckoutModeOneTime      CheckoutMode = "one_time"
)

func (m CheckoutMode) Validate() error {
	if m != CheckoutModeSubscription && m != CheckoutModeOneTime {
		return ierr.NewError("invalid checkout mode").
			WithHint("Mode must be subscription or one_time").
			WithReportableDetails(map[string]any{
				"mode": m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	*QueryFilter

	AccountID      string          `json:"account_id,omitempty" form:"account_id"`
	SubscriptionID string          `json:"subscription_id,omitempty" form:"subscription_id"`
	LabelID        string          `json:"label_id,omitempty" form:"label_id"`
	Provider       PaymentProvider `json:"provider,omitempty" form:"provider"`
	Statuses       []PaymentStatus `json:"statuses,omitempty" form:"statuses"`
	// AgreementID matches the checkout payment that created a recurring agreement
	AgreementID string `json:"agreement_id,omitempty" form:"agreement_id"`
}

func NewPaymentFilter() *PaymentFilter {
	return &PaymentFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f *PaymentFilter) Validate() error {
	if f == nil || f.QueryFilter == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}
