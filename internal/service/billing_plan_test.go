package service

import (
	"testing"

	"github.com/flexprice/recurring/internal/api/dto"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/testutil"
	"github.com/flexprice/recurring/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingPlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingPlanService
}

func TestBillingPlanService(t *testing.T) {
	suite.Run(t, new(BillingPlanServiceSuite))
}

func (s *BillingPlanServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingPlanService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *BillingPlanServiceSuite) monthlyUSD() dto.CreateBillingPlanRequest {
	return dto.CreateBillingPlanRequest{
		Provider: types.PaymentProviderStripe,
		Plan:     types.SubscriptionPlanRecurringMonthly,
		Period:   types.BillingPeriodMonthly,
		Currency: "usd",
		Price:    decimal.NewFromInt(20),
		Name:     "Pro monthly",
	}
}

func (s *BillingPlanServiceSuite) TestCreateBillingPlan() {
	resp, err := s.service.CreateBillingPlan(s.GetContext(), s.monthlyUSD())
	s.Require().NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal("USD", resp.Currency)
	s.Equal(types.BillingPlanStatusCreated, resp.Status)
	s.Equal(testutil.DefaultOperatorID, resp.CreatedBy)

	got, err := s.service.GetBillingPlan(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal("Pro monthly", got.Name)
}

func (s *BillingPlanServiceSuite) TestCreateBillingPlanRejectsDuplicates() {
	_, err := s.service.CreateBillingPlan(s.GetContext(), s.monthlyUSD())
	s.Require().NoError(err)

	_, err = s.service.CreateBillingPlan(s.GetContext(), s.monthlyUSD())
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *BillingPlanServiceSuite) TestCreateBillingPlanValidation() {
	tests := []struct {
		name   string
		mutate func(r *dto.CreateBillingPlanRequest)
	}{
		{"trial plan", func(r *dto.CreateBillingPlanRequest) { r.Plan = types.SubscriptionPlanTrial }},
		{"enterprise plan", func(r *dto.CreateBillingPlanRequest) { r.Plan = types.SubscriptionPlanEnterpriseCustom }},
		{"unknown provider", func(r *dto.CreateBillingPlanRequest) { r.Provider = "paypal" }},
		{"bad currency", func(r *dto.CreateBillingPlanRequest) { r.Currency = "dollars" }},
		{"zero price", func(r *dto.CreateBillingPlanRequest) { r.Price = decimal.Zero }},
		{"missing period", func(r *dto.CreateBillingPlanRequest) { r.Period = "" }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.monthlyUSD()
			tt.mutate(&req)
			_, err := s.service.CreateBillingPlan(s.GetContext(), req)
			s.Error(err)
			s.True(ierr.IsValidation(err), "got %v", err)
		})
	}
}

func (s *BillingPlanServiceSuite) TestResolveOnlyFindsActivePlans() {
	created, err := s.service.CreateBillingPlan(s.GetContext(), s.monthlyUSD())
	s.Require().NoError(err)

	_, err = s.service.Resolve(s.GetContext(), types.PaymentProviderStripe, types.SubscriptionPlanRecurringMonthly, types.BillingPeriodMonthly, "USD")
	s.True(ierr.IsValidation(err))

	_, err = s.service.ActivateBillingPlan(s.GetContext(), created.ID)
	s.Require().NoError(err)

	bp, err := s.service.Resolve(s.GetContext(), types.PaymentProviderStripe, types.SubscriptionPlanRecurringMonthly, types.BillingPeriodMonthly, "usd")
	s.Require().NoError(err)
	s.Equal(created.ID, bp.ID)
	s.True(bp.Price.Equal(decimal.NewFromInt(20)))
}

func (s *BillingPlanServiceSuite) TestDeactivateInvalidatesResolvedPlans() {
	created, err := s.service.CreateBillingPlan(s.GetContext(), s.monthlyUSD())
	s.Require().NoError(err)
	_, err = s.service.ActivateBillingPlan(s.GetContext(), created.ID)
	s.Require().NoError(err)

	_, err = s.service.Resolve(s.GetContext(), types.PaymentProviderStripe, types.SubscriptionPlanRecurringMonthly, types.BillingPeriodMonthly, "USD")
	s.Require().NoError(err)

	resp, err := s.service.DeactivateBillingPlan(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Equal(types.BillingPlanStatusInactive, resp.Status)

	_, err = s.service.Resolve(s.GetContext(), types.PaymentProviderStripe, types.SubscriptionPlanRecurringMonthly, types.BillingPeriodMonthly, "USD")
	s.True(ierr.IsValidation(err))
}

func (s *BillingPlanServiceSuite) TestListBillingPlans() {
	_, err := s.service.CreateBillingPlan(s.GetContext(), s.monthlyUSD())
	s.Require().NoError(err)
	seedActivePlan(&s.BaseServiceTestSuite, types.PaymentProviderXendit, types.SubscriptionPlanRecurringYearly, "IDR", 3000000)

	all, err := s.service.ListBillingPlans(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Len(all.Items, 2)

	filter := types.NewBillingPlanFilter()
	filter.Statuses = []types.BillingPlanStatus{types.BillingPlanStatusActive}
	active, err := s.service.ListBillingPlans(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Require().Len(active.Items, 1)
	s.Equal(types.PaymentProviderXendit, active.Items[0].Provider)
}

func (s *BillingPlanServiceSuite) TestGetBillingPlanErrors() {
	_, err := s.service.GetBillingPlan(s.GetContext(), "")
	s.True(ierr.IsValidation(err))

	_, err = s.service.GetBillingPlan(s.GetContext(), "bp_missing")
	s.True(ierr.IsNotFound(err))
}
