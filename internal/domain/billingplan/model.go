package billingplan

import (
	"context"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/shopspring/decimal"
)

// BillingPlan is a purchasable (provider, plan, period, currency) catalog entry
type BillingPlan struct {
	ID       string                  `db:"id" json:"id"`
	Provider types.PaymentProvider   `db:"provider" json:"provider"`
	Plan     types.SubscriptionPlan  `db:"plan" json:"plan"`
	Period   types.BillingPeriod     `db:"period" json:"period"`
	Currency string                  `db:"currency" json:"currency"`
	Price    decimal.Decimal         `db:"price" json:"price"`
	Status   types.BillingPlanStatus `db:"status" json:"status"`
	Name     string                  `db:"name" json:"name"`
	// ExternalPriceID optionally references a price object already created at the provider
	ExternalPriceID *string `db:"external_price_id" json:"external_price_id,omitempty"`

	types.BaseModel
}

func New(ctx context.Context, provider types.PaymentProvider, plan types.SubscriptionPlan, period types.BillingPeriod, currency string, price decimal.Decimal) *BillingPlan {
	return &BillingPlan{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_PLAN),
		Provider:  provider,
		Plan:      plan,
		Period:    period,
		Currency:  types.NormalizeCurrency(currency),
		Price:     price,
		Status:    types.BillingPlanStatusCreated,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

func (p *BillingPlan) Validate() error {
	if err := p.Provider.Validate(); err != nil {
		return err
	}
	if err := p.Plan.Validate(); err != nil {
		return err
	}
	if !p.Plan.IsPurchasable() || p.Plan == types.SubscriptionPlanEnterpriseCustom {
		return ierr.NewError("plan is not sold through the catalog").
			WithHint("Only recurring plans can be listed in the catalog").
			WithReportableDetails(map[string]any{
				"plan": p.Plan,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := p.Period.Validate(); err != nil {
		return err
	}
	if err := types.ValidateCurrencyCode(p.Currency); err != nil {
		return err
	}
	if !p.Price.IsPositive() {
		return ierr.NewError("price must be positive").
			WithHint("Price must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return p.Status.Validate()
}

// CacheKey identifies the catalog tuple the plan is unique on
func CacheKey(provider types.PaymentProvider, plan types.SubscriptionPlan, period types.BillingPeriod, currency string) string {
	return string(provider) + ":" + string(plan) + ":" + string(period) + ":" + types.NormalizeCurrency(currency)
}
