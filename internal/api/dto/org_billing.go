package dto

import (
	"github.com/flexprice/recurring/internal/domain/payment"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/flexprice/recurring/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CreateOrgInvoiceRequest bills many seats of an enterprise label with one payment.
// Exactly one of PricePerUser and TotalAmount is set.
type CreateOrgInvoiceRequest struct {
	LabelID      string                       `json:"label_id" validate:"required"`
	UserIDs      []string                     `json:"user_ids" validate:"required,min=1,dive,required"`
	PricePerUser *decimal.Decimal             `json:"price_per_user,omitempty" swaggertype:"string"`
	TotalAmount  *decimal.Decimal             `json:"total_amount,omitempty" swaggertype:"string"`
	Currency     string                       `json:"currency,omitempty"`
	Period       types.BillingPeriod          `json:"period,omitempty"`
	Provider     types.PaymentProvider        `json:"provider,omitempty"`
	Manual       *payment.ManualPaymentFields `json:"manual,omitempty"`
	Description  string                       `json:"description,omitempty" validate:"omitempty,max=255"`
}

func (r *CreateOrgInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if len(lo.Uniq(r.UserIDs)) != len(r.UserIDs) {
		return ierr.NewError("user ids must be unique").
			WithHint("Each seat can only be billed once per invoice").
			WithReportableDetails(map[string]any{
				"duplicates": lo.FindDuplicates(r.UserIDs),
			}).
			Mark(ierr.ErrValidation)
	}
	if (r.PricePerUser == nil) == (r.TotalAmount == nil) {
		return ierr.NewError("exactly one of price_per_user and total_amount is required").
			WithHint("Provide either a price per user or a total amount").
			Mark(ierr.ErrValidation)
	}
	amount := lo.FromPtr(lo.Ternary(r.PricePerUser != nil, r.PricePerUser, r.TotalAmount))
	if !amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHint("Amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	if r.Period != "" {
		if err := r.Period.Validate(); err != nil {
			return err
		}
	}
	if r.Provider != "" {
		if err := r.Provider.Validate(); err != nil {
			return err
		}
	}
	if r.Currency != "" {
		if err := types.ValidateCurrencyCode(r.Currency); err != nil {
			return err
		}
	}
	return nil
}

// Amounts returns the invoice total and the per-seat price
func (r *CreateOrgInvoiceRequest) Amounts() (decimal.Decimal, decimal.Decimal) {
	seats := decimal.NewFromInt(int64(len(r.UserIDs)))
	if r.PricePerUser != nil {
		return r.PricePerUser.Mul(seats), *r.PricePerUser
	}
	return *r.TotalAmount, r.TotalAmount.Div(seats)
}

// RenewOrgInvoiceRequest bills a new period for the seats of a paid org invoice
type RenewOrgInvoiceRequest struct {
	PriorPaymentID string                `json:"prior_payment_id" validate:"required"`
	Provider       types.PaymentProvider `json:"provider,omitempty"`
	// SyncMembers re-reads the seat list from the label instead of reusing the prior invoice's
	SyncMembers bool                         `json:"sync_members"`
	Manual      *payment.ManualPaymentFields `json:"manual,omitempty"`
}

func (r *RenewOrgInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Provider != "" {
		return r.Provider.Validate()
	}
	return nil
}

type OrgInvoiceResponse struct {
	Payment     *PaymentResponse `json:"payment"`
	RedirectURL string           `json:"redirect_url,omitempty"`
}

// ActivateBulkRequest activates ENTERPRISE_CUSTOM seats for a label
type ActivateBulkRequest struct {
	LabelID      string              `json:"label_id" validate:"required"`
	UserIDs      []string            `json:"user_ids" validate:"required,min=1,dive,required"`
	PricePerUser decimal.Decimal     `json:"price_per_user" swaggertype:"string"`
	Currency     string              `json:"currency" validate:"required"`
	Period       types.BillingPeriod `json:"period" validate:"required"`
	// PaymentID is the paid org invoice funding the seats, recorded in history
	PaymentID string `json:"payment_id,omitempty"`
}

func (r *ActivateBulkRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Period.Validate()
}

type SeatFailure struct {
	AccountID string `json:"account_id"`
	Error     string `json:"error"`
}

// BulkActivationResult reports partial success of a seat fan-out
type BulkActivationResult struct {
	Count    int           `json:"count"`
	Failures []SeatFailure `json:"failures"`
}

// FailedAccountIDs lists the seats that could not be activated
func (r *BulkActivationResult) FailedAccountIDs() []string {
	return lo.Map(r.Failures, func(f SeatFailure, _ int) string {
		return f.AccountID
	})
}
