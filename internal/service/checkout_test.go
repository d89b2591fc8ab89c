package service

import (
	"errors"
	"testing"

	"github.com/flexprice/recurring/internal/api/dto"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/testutil"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CheckoutServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CheckoutService
}

func TestCheckoutService(t *testing.T) {
	suite.Run(t, new(CheckoutServiceSuite))
}

func (s *CheckoutServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewCheckoutService(params, NewBillingPlanService(params))

	seedActivePlan(&s.BaseServiceTestSuite, types.PaymentProviderStripe, types.SubscriptionPlanRecurringMonthly, "USD", 20)
	seedActivePlan(&s.BaseServiceTestSuite, types.PaymentProviderXendit, types.SubscriptionPlanRecurringYearly, "IDR", 3000000)
}

func providerError(provider types.PaymentProvider) error {
	return base.ProviderCallFailed(errors.New("503 service unavailable"), provider, "create")
}

func (s *CheckoutServiceSuite) TestSelectProvider() {
	s.Equal(types.PaymentProviderStripe, SelectProvider("", "usd"))
	s.Equal(types.PaymentProviderXendit, SelectProvider("", "IDR"))
	s.Equal(types.PaymentProviderXendit, SelectProvider(types.PaymentProviderXendit, "USD"))
}

func (s *CheckoutServiceSuite) TestSubscriptionCheckout() {
	resp, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeSubscription,
		Plan:      types.SubscriptionPlanRecurringMonthly,
		Currency:  "usd",
	})
	s.Require().NoError(err)
	s.Equal(types.PaymentProviderStripe, resp.Provider)
	s.Equal("USD", resp.Currency)
	s.True(resp.Amount.Equal(decimal.NewFromInt(20)))
	s.NotEmpty(resp.RedirectURL)
	s.NotEmpty(resp.SubscriptionID)
	s.Contains(resp.InvoiceNumber, types.SHORT_ID_PREFIX_INVOICE)

	s.Len(s.GetProviders().Stripe.Agreements, 1)
	agreement := s.GetProviders().Stripe.Agreements[0]
	s.Equal(types.BillingPeriodMonthly, agreement.Period)
	s.NotEmpty(agreement.IdempotencyKey)

	pay, err := s.GetStores().PaymentRepo.Get(s.GetContext(), resp.PaymentID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPending, pay.Status)
	s.Equal("stripe_"+pay.ID, pay.GetExternalID())
	s.Equal(resp.SubscriptionID, pay.GetSubscriptionID())
	s.Equal(types.CheckoutModeSubscription, pay.Metadata.Simple.CheckoutMode)

	sub, err := s.GetStores().SubscriptionRepo.GetByAccountID(s.GetContext(), "acc_u1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusTrial, sub.Status)
	s.Equal(types.SubscriptionPlanTrial, sub.Plan)
}

func (s *CheckoutServiceSuite) TestCheckoutKeepsExistingSubscription() {
	first, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeSubscription,
		Plan:      types.SubscriptionPlanRecurringYearly,
	})
	s.Require().NoError(err)
	s.Equal(types.PaymentProviderXendit, first.Provider)

	second, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeSubscription,
		Plan:      types.SubscriptionPlanRecurringYearly,
	})
	s.Require().NoError(err)
	s.Equal(first.SubscriptionID, second.SubscriptionID)
	s.NotEqual(first.PaymentID, second.PaymentID)
}

func (s *CheckoutServiceSuite) TestEnterpriseCheckoutUsesExplicitPrice() {
	resp, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeOneTime,
		Plan:      types.SubscriptionPlanEnterpriseCustom,
		Price:     lo.ToPtr(decimal.NewFromInt(1250000)),
		Period:    types.BillingPeriodYearly,
	})
	s.Require().NoError(err)
	s.True(resp.Amount.Equal(decimal.NewFromInt(1250000)))
	s.Equal("IDR", resp.Currency)
	s.Len(s.GetProviders().Xendit.Charges, 1)
	s.Equal(decimal.NewFromInt(1250000).String(), s.GetProviders().Xendit.Charges[0].Amount.String())
}

func (s *CheckoutServiceSuite) TestPlanlessChargeHasNoSubscription() {
	resp, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeOneTime,
		Price:     lo.ToPtr(decimal.NewFromInt(5)),
		Currency:  "USD",
	})
	s.Require().NoError(err)
	s.Empty(resp.SubscriptionID)

	_, err = s.GetStores().SubscriptionRepo.GetByAccountID(s.GetContext(), "acc_u1")
	s.True(ierr.IsNotFound(err))
}

func (s *CheckoutServiceSuite) TestCheckoutValidation() {
	tests := []struct {
		name string
		req  dto.CheckoutRequest
	}{
		{
			name: "missing account",
			req:  dto.CheckoutRequest{Mode: types.CheckoutModeSubscription, Plan: types.SubscriptionPlanRecurringMonthly},
		},
		{
			name: "subscription without plan",
			req:  dto.CheckoutRequest{AccountID: "acc_u1", Mode: types.CheckoutModeSubscription},
		},
		{
			name: "trial is not purchasable",
			req:  dto.CheckoutRequest{AccountID: "acc_u1", Mode: types.CheckoutModeSubscription, Plan: types.SubscriptionPlanTrial},
		},
		{
			name: "enterprise without price",
			req:  dto.CheckoutRequest{AccountID: "acc_u1", Mode: types.CheckoutModeOneTime, Plan: types.SubscriptionPlanEnterpriseCustom},
		},
		{
			name: "period does not match plan",
			req: dto.CheckoutRequest{
				AccountID: "acc_u1",
				Mode:      types.CheckoutModeSubscription,
				Plan:      types.SubscriptionPlanRecurringMonthly,
				Period:    types.BillingPeriodYearly,
				Currency:  "USD",
			},
		},
		{
			name: "no catalog entry",
			req: dto.CheckoutRequest{
				AccountID: "acc_u1",
				Mode:      types.CheckoutModeSubscription,
				Plan:      types.SubscriptionPlanRecurringMonthly,
				Currency:  "IDR",
			},
		},
		{
			name: "manual provider",
			req: dto.CheckoutRequest{
				AccountID: "acc_u1",
				Mode:      types.CheckoutModeOneTime,
				Price:     lo.ToPtr(decimal.NewFromInt(5)),
				Provider:  types.PaymentProviderManual,
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Checkout(s.GetContext(), tt.req)
			s.Error(err)
			s.True(ierr.IsValidation(err), "got %v", err)
		})
	}

	payments, err := s.GetStores().PaymentRepo.List(s.GetContext(), types.NewPaymentFilter())
	s.NoError(err)
	s.Empty(payments)
}

func (s *CheckoutServiceSuite) TestUnconfiguredProvider() {
	s.GetProviders().Stripe.Unconfigured()

	_, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeSubscription,
		Plan:      types.SubscriptionPlanRecurringMonthly,
		Currency:  "USD",
	})
	s.Error(err)
	s.True(ierr.IsConfiguration(err))
}

func (s *CheckoutServiceSuite) TestProviderErrorsAreRetried() {
	stripe := s.GetProviders().Stripe
	stripe.FailNext(providerError(types.PaymentProviderStripe), providerError(types.PaymentProviderStripe))

	resp, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeSubscription,
		Plan:      types.SubscriptionPlanRecurringMonthly,
		Currency:  "USD",
	})
	s.Require().NoError(err)
	s.Equal(3, stripe.CreateCalls())
	s.Len(stripe.Agreements, 1)
	s.NotEmpty(resp.RedirectURL)
}

func (s *CheckoutServiceSuite) TestExhaustedRetriesLeavePendingPayment() {
	stripe := s.GetProviders().Stripe
	for i := 0; i <= s.GetConfig().Providers.MaxRetries; i++ {
		stripe.FailNext(providerError(types.PaymentProviderStripe))
	}

	_, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeSubscription,
		Plan:      types.SubscriptionPlanRecurringMonthly,
		Currency:  "USD",
	})
	s.Error(err)
	s.True(ierr.IsProvider(err))
	s.Equal(s.GetConfig().Providers.MaxRetries+1, stripe.CreateCalls())

	filter := types.NewPaymentFilter()
	filter.AccountID = "acc_u1"
	payments, err := s.GetStores().PaymentRepo.List(s.GetContext(), filter)
	s.NoError(err)
	s.Len(payments, 1)
	s.Equal(types.PaymentStatusPending, payments[0].Status)
	s.Nil(payments[0].ExternalID)
}

func (s *CheckoutServiceSuite) TestValidationErrorsAreNotRetried() {
	stripe := s.GetProviders().Stripe
	stripe.FailNext(ierr.NewError("amount too small").Mark(ierr.ErrValidation))

	_, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeOneTime,
		Price:     lo.ToPtr(decimal.NewFromInt(1)),
		Currency:  "USD",
	})
	s.True(ierr.IsValidation(err))
	s.Equal(1, stripe.CreateCalls())
}

func (s *CheckoutServiceSuite) TestAgreementIssuedAtCheckoutIsLinked() {
	s.GetProviders().Xendit.WithAgreementID("rp_42")

	resp, err := s.service.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: "acc_u1",
		Mode:      types.CheckoutModeSubscription,
		Plan:      types.SubscriptionPlanRecurringYearly,
	})
	s.Require().NoError(err)

	sub, err := s.GetStores().SubscriptionRepo.GetByAccountID(s.GetContext(), "acc_u1")
	s.NoError(err)
	s.Equal("rp_42", lo.FromPtr(sub.ExternalAgreementID))
	s.Equal(types.PaymentProviderXendit, lo.FromPtr(sub.Provider))

	pay, err := s.GetStores().PaymentRepo.Get(s.GetContext(), resp.PaymentID)
	s.NoError(err)
	s.Equal("rp_42", pay.Metadata.Simple.AgreementID)
}
