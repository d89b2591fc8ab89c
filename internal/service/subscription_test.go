package service

import (
	"errors"
	"testing"
	"time"

	"github.com/flexprice/recurring/internal/api/dto"
	"github.com/flexprice/recurring/internal/domain/subscription"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/testutil"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionService(newTestServiceParams(&s.BaseServiceTestSuite))
}

// activeRecurring stores an ACTIVE monthly subscription funded by a stripe agreement
func (s *SubscriptionServiceSuite) activeRecurring(accountID, agreementID string) *subscription.Subscription {
	start := s.GetNow().AddDate(0, 0, -5)
	end := start.AddDate(0, 1, 0)
	sub := &subscription.Subscription{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		AccountID:           accountID,
		Plan:                types.SubscriptionPlanRecurringMonthly,
		Status:              types.SubscriptionStatusActive,
		BillingPeriod:       types.BillingPeriodMonthly,
		StartedAt:           start,
		CurrentPeriodStart:  &start,
		CurrentPeriodEnd:    &end,
		ExpiresAt:           &end,
		AutoRenew:           true,
		Provider:            lo.ToPtr(types.PaymentProviderStripe),
		ExternalAgreementID: lo.ToPtr(agreementID),
		Version:             1,
		BaseModel:           types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *SubscriptionServiceSuite) TestEnsureTrial() {
	resp, err := s.service.EnsureTrial(s.GetContext(), "acc_new")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusTrial, resp.Status)
	s.Equal(types.SubscriptionPlanTrial, resp.Plan)
	s.False(resp.AutoRenew)
	s.Equal(s.GetNow().AddDate(0, 0, s.GetConfig().Billing.TrialDays), *resp.TrialEndsAt)

	history, err := s.service.ListHistory(s.GetContext(), "acc_new")
	s.Require().NoError(err)
	s.Require().Len(history.Items, 1)
	s.Equal(types.SubscriptionActionTrialStarted, history.Items[0].Action)
	s.Nil(history.Items[0].OldStatus)
}

func (s *SubscriptionServiceSuite) TestEnsureTrialReturnsExistingSubscription() {
	existing := s.activeRecurring("acc_paid", "sub_1")

	resp, err := s.service.EnsureTrial(s.GetContext(), "acc_paid")
	s.Require().NoError(err)
	s.Equal(existing.ID, resp.ID)
	s.Equal(types.SubscriptionStatusActive, resp.Status)
	s.Equal(types.SubscriptionPlanRecurringMonthly, resp.Plan)

	// a second login after the trial started keeps the original trial window
	first, err := s.service.EnsureTrial(s.GetContext(), "acc_new")
	s.Require().NoError(err)
	s.Advance(48 * time.Hour)
	second, err := s.service.EnsureTrial(s.GetContext(), "acc_new")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(*first.TrialEndsAt, *second.TrialEndsAt)
}

func (s *SubscriptionServiceSuite) TestEnsureTrialRejectsIneligibleAccounts() {
	_, err := s.service.EnsureTrial(s.GetContext(), testutil.DefaultOperatorID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	_, err = s.GetStores().SubscriptionRepo.GetByAccountID(s.GetContext(), testutil.DefaultOperatorID)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.EnsureTrial(s.GetContext(), "")
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestGetSubscription() {
	_, err := s.service.GetSubscription(s.GetContext(), "acc_nobody")
	s.True(ierr.IsNotFound(err))

	sub := s.activeRecurring("acc_paid", "sub_1")
	resp, err := s.service.GetSubscription(s.GetContext(), "acc_paid")
	s.Require().NoError(err)
	s.Equal(sub.ID, resp.ID)
}

func (s *SubscriptionServiceSuite) TestCancelSubscription() {
	sub := s.activeRecurring("acc_paid", "sub_1")

	resp, err := s.service.CancelSubscription(s.GetContext(), "acc_paid", dto.CancelSubscriptionRequest{Reason: "too expensive"})
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.Status)
	s.False(resp.AutoRenew)
	s.NotNil(resp.CancelledAt)
	// access continues until the paid window ends
	s.Equal(*sub.CurrentPeriodEnd, *resp.CurrentPeriodEnd)
	s.Equal([]string{"sub_1"}, s.GetProviders().Stripe.Cancelled)

	history, err := s.service.ListHistory(s.GetContext(), "acc_paid")
	s.Require().NoError(err)
	s.Require().Len(history.Items, 1)
	s.Equal(types.SubscriptionActionCancelled, history.Items[0].Action)
	s.Equal("too expensive", history.Items[0].Reason)
	s.Equal(types.SubscriptionStatusActive, lo.FromPtr(history.Items[0].OldStatus))

	_, err = s.service.CancelSubscription(s.GetContext(), "acc_paid", dto.CancelSubscriptionRequest{})
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestCancelProviderFailureLeavesSubscription() {
	sub := s.activeRecurring("acc_paid", "sub_1")
	s.GetProviders().Stripe.FailCancel(ierr.NewError("stripe unavailable").Mark(ierr.ErrProvider))

	_, err := s.service.CancelSubscription(s.GetContext(), "acc_paid", dto.CancelSubscriptionRequest{})
	s.Error(err)
	s.True(ierr.IsProvider(err))

	got, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, got.Status)
	s.True(got.AutoRenew)
}

func (s *SubscriptionServiceSuite) TestCancelTrialWithoutAgreementSkipsProvider() {
	_, err := s.service.EnsureTrial(s.GetContext(), "acc_new")
	s.Require().NoError(err)
	s.GetProviders().Stripe.FailCancel(errors.New("must not be called"))

	resp, err := s.service.CancelSubscription(s.GetContext(), "acc_new", dto.CancelSubscriptionRequest{})
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.Status)
	s.Empty(s.GetProviders().Stripe.Cancelled)
}

func (s *SubscriptionServiceSuite) TestCancelTrialWithAgreementStopsIt() {
	sub, err := subscription.NewTrial(s.GetContext(), "acc_trial", s.GetNow(), 14)
	s.Require().NoError(err)
	sub.Version = 1
	sub.Provider = lo.ToPtr(types.PaymentProviderXendit)
	sub.ExternalAgreementID = lo.ToPtr("rp_9")
	s.Require().NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))

	resp, err := s.service.CancelSubscription(s.GetContext(), "acc_trial", dto.CancelSubscriptionRequest{})
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.Status)
	s.Equal([]string{"rp_9"}, s.GetProviders().Xendit.Cancelled)
	s.Empty(s.GetProviders().Stripe.Cancelled)
}
