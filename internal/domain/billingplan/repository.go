package billingplan

import (
	"context"

	"github.com/flexprice/recurring/internal/types"
)

type Repository interface {
	Create(ctx context.Context, plan *BillingPlan) error
	Get(ctx context.Context, id string) (*BillingPlan, error)
	Update(ctx context.Context, plan *BillingPlan) error
	List(ctx context.Context, filter *types.BillingPlanFilter) ([]*BillingPlan, error)
	// GetActive returns the ACTIVE plan for the catalog tuple
	GetActive(ctx context.Context, provider types.PaymentProvider, plan types.SubscriptionPlan, period types.BillingPeriod, currency string) (*BillingPlan, error)
}
