package payment

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// maxProviderPayloads bounds how many raw webhook bodies are kept on a payment
const maxProviderPayloads = 10

// Metadata is a variant keyed by Mode. Exactly the detail block matching Mode is set.
type Metadata struct {
	Mode       types.PaymentMode  `json:"mode"`
	Simple     *SimpleDetails     `json:"simple,omitempty"`
	Cycle      *CycleDetails      `json:"cycle,omitempty"`
	OrgInvoice *OrgInvoiceDetails `json:"org_invoice,omitempty"`

	// ProviderPayloads keeps the latest raw provider payloads for manual replay
	ProviderPayloads []json.RawMessage `json:"provider_payloads,omitempty"`
}

// SimpleDetails describe a checkout for a single account
type SimpleDetails struct {
	CheckoutMode types.CheckoutMode     `json:"checkout_mode"`
	Plan         types.SubscriptionPlan `json:"plan,omitempty"`
	Period       types.BillingPeriod    `json:"period,omitempty"`
	// AgreementID is set when the checkout created a recurring agreement
	AgreementID string `json:"agreement_id,omitempty"`
	// FirstCycleID is the provider reference of the cycle that settled this checkout
	FirstCycleID string `json:"first_cycle_id,omitempty"`
}

// CycleDetails describe one billing cycle of a recurring agreement
type CycleDetails struct {
	AgreementID string                  `json:"agreement_id"`
	EventType   types.ProviderEventType `json:"event_type"`
	// AnchorPaymentID is the checkout payment that created the agreement
	AnchorPaymentID string `json:"anchor_payment_id,omitempty"`
}

// OrgInvoiceDetails describe one invoice covering many seats of an enterprise label
type OrgInvoiceDetails struct {
	LabelID          string               `json:"label_id"`
	UserIDs          []string             `json:"user_ids"`
	PricePerUser     *decimal.Decimal     `json:"price_per_user,omitempty"`
	Period           types.BillingPeriod  `json:"period"`
	AwaitingApproval bool                 `json:"awaiting_approval"`
	ApprovedBy       string               `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time           `json:"approved_at,omitempty"`
	Manual           *ManualPaymentFields `json:"manual,omitempty"`
	RenewedFrom      string               `json:"renewed_from,omitempty"`
	// ActivatedCount and FailedUserIDs record the outcome of the seat fan-out
	ActivatedCount int      `json:"activated_count,omitempty"`
	FailedUserIDs  []string `json:"failed_user_ids,omitempty"`
}

// ManualPaymentFields are entered by an operator for offline payments
type ManualPaymentFields struct {
	Reference string     `json:"reference,omitempty"`
	PayerName string     `json:"payer_name,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	PaidOn    *time.Time `json:"paid_on,omitempty"`
}

func NewSimpleMetadata(details SimpleDetails) Metadata {
	return Metadata{Mode: types.PaymentModeSimple, Simple: &details}
}

func NewCycleMetadata(details CycleDetails) Metadata {
	return Metadata{Mode: types.PaymentModeCycle, Cycle: &details}
}

func NewOrgInvoiceMetadata(details OrgInvoiceDetails) Metadata {
	return Metadata{Mode: types.PaymentModeOrgInvoice, OrgInvoice: &details}
}

// IsAwaitingApproval reports whether an operator still has to approve the org invoice
func (m Metadata) IsAwaitingApproval() bool {
	return m.Mode == types.PaymentModeOrgInvoice && m.OrgInvoice != nil && m.OrgInvoice.AwaitingApproval
}

// AppendProviderPayload keeps raw at the end of the payload trail
func (m *Metadata) AppendProviderPayload(raw json.RawMessage) {
	if len(raw) == 0 || !json.Valid(raw) {
		return
	}
	m.ProviderPayloads = append(m.ProviderPayloads, raw)
	if len(m.ProviderPayloads) > maxProviderPayloads {
		m.ProviderPayloads = m.ProviderPayloads[len(m.ProviderPayloads)-maxProviderPayloads:]
	}
}

func (m Metadata) Validate() error {
	switch m.Mode {
	case types.PaymentModeSimple:
		if m.Simple == nil || m.Cycle != nil || m.OrgInvoice != nil {
			return invalidVariant(m.Mode)
		}
	case types.PaymentModeCycle:
		if m.Cycle == nil || m.Simple != nil || m.OrgInvoice != nil {
			return invalidVariant(m.Mode)
		}
		if m.Cycle.AgreementID == "" {
			return ierr.NewError("cycle payment requires an agreement id").
				WithHint("Recurring cycle payments must reference an agreement").
				Mark(ierr.ErrValidation)
		}
	case types.PaymentModeOrgInvoice:
		if m.OrgInvoice == nil || m.Simple != nil || m.Cycle != nil {
			return invalidVariant(m.Mode)
		}
		if m.OrgInvoice.LabelID == "" || len(m.OrgInvoice.UserIDs) == 0 {
			return ierr.NewError("org invoice requires a label and at least one user").
				WithHint("Organization invoices need a label and seats").
				Mark(ierr.ErrValidation)
		}
		if len(lo.Uniq(m.OrgInvoice.UserIDs)) != len(m.OrgInvoice.UserIDs) {
			return ierr.NewError("org invoice user ids must be unique").
				WithHint("Duplicate seats in organization invoice").
				Mark(ierr.ErrValidation)
		}
	default:
		return ierr.NewError("unknown payment metadata mode").
			WithHintf("Unknown payment mode %q", string(m.Mode)).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func invalidVariant(mode types.PaymentMode) error {
	return ierr.NewError("payment metadata does not match its mode").
		WithHint("Payment metadata is inconsistent").
		WithReportableDetails(map[string]any{
			"mode": mode,
		}).
		Mark(ierr.ErrValidation)
}

// Scan implements the sql.Scanner interface for Metadata
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal payment metadata: %v", value)
	}

	var result Metadata
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// Value implements the driver.Valuer interface for Metadata
func (m Metadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
