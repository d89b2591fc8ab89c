package service

import (
	"encoding/json"

	"github.com/flexprice/recurring/internal/domain/billingplan"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/testutil"
	"github.com/flexprice/recurring/internal/types"
	"github.com/shopspring/decimal"
)

// newTestServiceParams wires ServiceParams against the suite's in-memory stores and frozen clock
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	return ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		SubRepo:         s.GetStores().SubscriptionRepo,
		PaymentRepo:     s.GetStores().PaymentRepo,
		BillingPlanRepo: s.GetStores().BillingPlanRepo,
		LabelRepo:       s.GetStores().LabelRepo,
		Cache:           s.GetCache(),
		Providers:       s.GetProviderFactory(),
		Notifier:        s.GetNotifier(),
		Identity:        s.GetIdentity(),
		ReplayGuard:     s.GetReplayGuard(),
		Metrics:         s.GetMetrics(),
		Sentry:          s.GetSentry(),
		Now:             s.Clock(),
	}
}

// seedActivePlan stores an ACTIVE catalog entry
func seedActivePlan(s *testutil.BaseServiceTestSuite, provider types.PaymentProvider, plan types.SubscriptionPlan, currency string, price int64) *billingplan.BillingPlan {
	bp := billingplan.New(s.GetContext(), provider, plan, plan.DefaultPeriod(), currency, decimal.NewFromInt(price))
	bp.Status = types.BillingPlanStatusActive
	s.Require().NoError(s.GetStores().BillingPlanRepo.Create(s.GetContext(), bp))
	return bp
}

func newEvent(provider types.PaymentProvider, eventType types.ProviderEventType, externalID, agreementID string) *base.NormalizedEvent {
	event := &base.NormalizedEvent{
		Type:        eventType,
		Provider:    provider,
		ExternalID:  externalID,
		AgreementID: agreementID,
		NativeType:  string(eventType),
	}
	event.Raw, _ = json.Marshal(map[string]string{
		"type": string(eventType),
		"id":   externalID,
	})
	return event
}
