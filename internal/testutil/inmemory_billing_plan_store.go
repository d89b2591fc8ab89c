package testutil

import (
	"context"

	"github.com/flexprice/recurring/internal/domain/billingplan"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

var _ billingplan.Repository = (*InMemoryBillingPlanStore)(nil)

// InMemoryBillingPlanStore implements billingplan.Repository
type InMemoryBillingPlanStore struct {
	*InMemoryStore[*billingplan.BillingPlan]
}

func NewInMemoryBillingPlanStore() *InMemoryBillingPlanStore {
	return &InMemoryBillingPlanStore{
		InMemoryStore: NewInMemoryStore[*billingplan.BillingPlan](),
	}
}

func copyBillingPlan(p *billingplan.BillingPlan) *billingplan.BillingPlan {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (s *InMemoryBillingPlanStore) Create(ctx context.Context, plan *billingplan.BillingPlan) error {
	key := billingplan.CacheKey(plan.Provider, plan.Plan, plan.Period, plan.Currency)
	if _, exists := s.Find(ctx, func(p *billingplan.BillingPlan) bool {
		return billingplan.CacheKey(p.Provider, p.Plan, p.Period, p.Currency) == key
	}); exists {
		return ierr.NewError("billing plan already exists").
			WithHint("A billing plan for this provider, plan, period and currency already exists").
			WithReportableDetails(map[string]any{"tuple": key}).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, plan.ID, copyBillingPlan(plan))
}

func (s *InMemoryBillingPlanStore) Get(ctx context.Context, id string) (*billingplan.BillingPlan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound("Billing plan", map[string]any{"billing_plan_id": id})
	}
	return copyBillingPlan(p), nil
}

func (s *InMemoryBillingPlanStore) Update(ctx context.Context, plan *billingplan.BillingPlan) error {
	if err := s.InMemoryStore.Update(ctx, plan.ID, copyBillingPlan(plan)); err != nil {
		return notFound("Billing plan", map[string]any{"billing_plan_id": plan.ID})
	}
	return nil
}

func (s *InMemoryBillingPlanStore) List(ctx context.Context, filter *types.BillingPlanFilter) ([]*billingplan.BillingPlan, error) {
	if filter == nil {
		filter = types.NewBillingPlanFilter()
	}
	items, err := s.InMemoryStore.List(ctx, filter.QueryFilter, func(_ context.Context, p *billingplan.BillingPlan, _ interface{}) bool {
		if filter.Provider != "" && p.Provider != filter.Provider {
			return false
		}
		if filter.Plan != "" && p.Plan != filter.Plan {
			return false
		}
		if filter.Period != "" && p.Period != filter.Period {
			return false
		}
		if filter.Currency != "" && p.Currency != types.NormalizeCurrency(filter.Currency) {
			return false
		}
		return len(filter.Statuses) == 0 || lo.Contains(filter.Statuses, p.Status)
	}, func(a, b *billingplan.BillingPlan) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *billingplan.BillingPlan, _ int) *billingplan.BillingPlan {
		return copyBillingPlan(p)
	}), nil
}

func (s *InMemoryBillingPlanStore) GetActive(ctx context.Context, provider types.PaymentProvider, plan types.SubscriptionPlan, period types.BillingPeriod, currency string) (*billingplan.BillingPlan, error) {
	key := billingplan.CacheKey(provider, plan, period, currency)
	p, ok := s.Find(ctx, func(p *billingplan.BillingPlan) bool {
		return p.Status == types.BillingPlanStatusActive &&
			billingplan.CacheKey(p.Provider, p.Plan, p.Period, p.Currency) == key
	})
	if !ok {
		return nil, notFound("Billing plan", map[string]any{
			"provider": provider,
			"plan":     plan,
			"period":   period,
			"currency": currency,
		})
	}
	return copyBillingPlan(p), nil
}
