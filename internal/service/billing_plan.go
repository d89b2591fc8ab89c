package service

import (
	"context"

	"github.com/flexprice/recurring/internal/api/dto"
	"github.com/flexprice/recurring/internal/cache"
	"github.com/flexprice/recurring/internal/domain/billingplan"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

// BillingPlanService manages the purchasable catalog
type BillingPlanService interface {
	CreateBillingPlan(ctx context.Context, req dto.CreateBillingPlanRequest) (*dto.BillingPlanResponse, error)
	GetBillingPlan(ctx context.Context, id string) (*dto.BillingPlanResponse, error)
	ListBillingPlans(ctx context.Context, filter *types.BillingPlanFilter) (*dto.ListBillingPlansResponse, error)
	ActivateBillingPlan(ctx context.Context, id string) (*dto.BillingPlanResponse, error)
	DeactivateBillingPlan(ctx context.Context, id string) (*dto.BillingPlanResponse, error)

	// Resolve returns the ACTIVE plan for the catalog tuple
	Resolve(ctx context.Context, provider types.PaymentProvider, plan types.SubscriptionPlan, period types.BillingPeriod, currency string) (*billingplan.BillingPlan, error)
}

type billingPlanService struct {
	ServiceParams
}

func NewBillingPlanService(params ServiceParams) BillingPlanService {
	return &billingPlanService{ServiceParams: params}
}

func (s *billingPlanService) CreateBillingPlan(ctx context.Context, req dto.CreateBillingPlanRequest) (*dto.BillingPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bp := req.ToBillingPlan(ctx)
	if err := s.BillingPlanRepo.Create(ctx, bp); err != nil {
		return nil, err
	}

	s.Logger.Infow("created billing plan",
		"billing_plan_id", bp.ID,
		"provider", bp.Provider,
		"plan", bp.Plan,
		"period", bp.Period,
		"currency", bp.Currency)
	return &dto.BillingPlanResponse{BillingPlan: bp}, nil
}

func (s *billingPlanService) GetBillingPlan(ctx context.Context, id string) (*dto.BillingPlanResponse, error) {
	if id == "" {
		return nil, ierr.NewError("billing plan id is required").
			WithHint("Billing plan ID is required").
			Mark(ierr.ErrValidation)
	}
	bp, err := s.BillingPlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BillingPlanResponse{BillingPlan: bp}, nil
}

func (s *billingPlanService) ListBillingPlans(ctx context.Context, filter *types.BillingPlanFilter) (*dto.ListBillingPlansResponse, error) {
	if filter == nil {
		filter = types.NewBillingPlanFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	plans, err := s.BillingPlanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListBillingPlansResponse{
		Items: lo.Map(plans, func(bp *billingplan.BillingPlan, _ int) *dto.BillingPlanResponse {
			return &dto.BillingPlanResponse{BillingPlan: bp}
		}),
		Pagination: types.NewPaginationResponse(len(plans), filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *billingPlanService) ActivateBillingPlan(ctx context.Context, id string) (*dto.BillingPlanResponse, error) {
	return s.setStatus(ctx, id, types.BillingPlanStatusActive)
}

func (s *billingPlanService) DeactivateBillingPlan(ctx context.Context, id string) (*dto.BillingPlanResponse, error) {
	return s.setStatus(ctx, id, types.BillingPlanStatusInactive)
}

func (s *billingPlanService) setStatus(ctx context.Context, id string, status types.BillingPlanStatus) (*dto.BillingPlanResponse, error) {
	bp, err := s.BillingPlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bp.Status == status {
		return &dto.BillingPlanResponse{BillingPlan: bp}, nil
	}

	bp.Status = status
	bp.Touch(ctx, s.now())
	if err := s.BillingPlanRepo.Update(ctx, bp); err != nil {
		return nil, err
	}

	// resolved lookups may still point at the old status
	s.Cache.DeleteByPrefix(ctx, cache.PrefixBillingPlan)

	s.Logger.Infow("billing plan status changed", "billing_plan_id", bp.ID, "status", status)
	return &dto.BillingPlanResponse{BillingPlan: bp}, nil
}

func (s *billingPlanService) Resolve(ctx context.Context, provider types.PaymentProvider, plan types.SubscriptionPlan, period types.BillingPeriod, currency string) (*billingplan.BillingPlan, error) {
	key := cache.GenerateKey(cache.PrefixBillingPlan, billingplan.CacheKey(provider, plan, period, currency))
	if cached, found := s.Cache.Get(ctx, key); found {
		if bp, ok := cached.(*billingplan.BillingPlan); ok {
			return bp, nil
		}
	}

	bp, err := s.BillingPlanRepo.GetActive(ctx, provider, plan, period, currency)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("no active billing plan").
				WithHintf("No active billing plan for %s %s in %s", plan, period, types.NormalizeCurrency(currency)).
				WithReportableDetails(map[string]any{
					"provider": provider,
					"plan":     plan,
					"period":   period,
					"currency": currency,
				}).
				Mark(ierr.ErrValidation)
		}
		return nil, err
	}

	s.Cache.Set(ctx, key, bp, s.Config.Billing.CatalogCacheTTL)
	return bp, nil
}
