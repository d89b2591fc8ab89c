package dto

import (
	"context"

	"github.com/flexprice/recurring/internal/domain/billingplan"
	"github.com/flexprice/recurring/internal/types"
	"github.com/flexprice/recurring/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateBillingPlanRequest struct {
	Provider        types.PaymentProvider  `json:"provider" validate:"required"`
	Plan            types.SubscriptionPlan `json:"plan" validate:"required"`
	Period          types.BillingPeriod    `json:"period" validate:"required"`
	Currency        string                 `json:"currency" validate:"required"`
	Price           decimal.Decimal        `json:"price" swaggertype:"string"`
	Name            string                 `json:"name" validate:"omitempty,max=255"`
	ExternalPriceID *string                `json:"external_price_id,omitempty"`
}

func (r *CreateBillingPlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.ToBillingPlan(context.Background()).Validate()
}

func (r *CreateBillingPlanRequest) ToBillingPlan(ctx context.Context) *billingplan.BillingPlan {
	bp := billingplan.New(ctx, r.Provider, r.Plan, r.Period, r.Currency, r.Price)
	bp.Name = r.Name
	bp.ExternalPriceID = r.ExternalPriceID
	return bp
}

type BillingPlanResponse struct {
	*billingplan.BillingPlan
}

type ListBillingPlansResponse = types.ListResponse[*BillingPlanResponse]
