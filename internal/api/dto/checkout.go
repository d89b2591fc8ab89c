package dto

import (
	"strings"
	"time"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/flexprice/recurring/internal/validator"
	"github.com/shopspring/decimal"
)

// CheckoutRequest starts a subscription or one-time purchase for an account
type CheckoutRequest struct {
	AccountID string                 `json:"account_id" validate:"required"`
	Mode      types.CheckoutMode     `json:"mode" validate:"required"`
	Plan      types.SubscriptionPlan `json:"plan,omitempty"`
	// Price is required for ENTERPRISE_CUSTOM and for one-time charges without a plan
	Price       *decimal.Decimal      `json:"price,omitempty" swaggertype:"string"`
	Currency    string                `json:"currency,omitempty"`
	Provider    types.PaymentProvider `json:"provider,omitempty"`
	Period      types.BillingPeriod   `json:"period,omitempty"`
	Description string                `json:"description,omitempty" validate:"omitempty,max=255"`
}

func (r *CheckoutRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Mode.Validate(); err != nil {
		return err
	}

	if r.Mode == types.CheckoutModeSubscription && r.Plan == "" {
		return ierr.NewError("plan is required for subscription checkout").
			WithHint("Plan is required").
			Mark(ierr.ErrValidation)
	}
	if r.Plan != "" {
		if err := r.Plan.Validate(); err != nil {
			return err
		}
		if !r.Plan.IsPurchasable() {
			return ierr.NewError("trial plan cannot be purchased").
				WithHint("Trial is granted automatically and cannot be purchased").
				Mark(ierr.ErrValidation)
		}
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

	if r.Price != nil && !r.Price.IsPositive() {
		return ierr.NewError("price must be positive").
			WithHint("Price must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	needsPrice := r.Plan == types.SubscriptionPlanEnterpriseCustom || r.Plan == ""
	if needsPrice && r.Price == nil {
		return ierr.NewError("price is required").
			WithHint("Price is required for custom and one-time charges").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetCurrency returns the normalized currency or fallback when none was given
func (r *CheckoutRequest) GetCurrency(fallback string) string {
	if strings.TrimSpace(r.Currency) == "" {
		return types.NormalizeCurrency(fallback)
	}
	return types.NormalizeCurrency(r.Currency)
}

// CheckoutResponse tells the caller where to send the payer
type CheckoutResponse struct {
	PaymentID      string                `json:"payment_id"`
	SubscriptionID string                `json:"subscription_id,omitempty"`
	Provider       types.PaymentProvider `json:"provider"`
	InvoiceNumber  string                `json:"invoice_number"`
	Amount         decimal.Decimal       `json:"amount" swaggertype:"string"`
	Currency       string                `json:"currency"`
	// RedirectURL is empty for manual payments, which wait for operator approval
	RedirectURL string     `json:"redirect_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
