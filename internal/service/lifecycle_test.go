package service

import (
	"errors"
	"testing"
	"time"

	"github.com/flexprice/recurring/internal/domain/subscription"
	"github.com/flexprice/recurring/internal/notification"
	"github.com/flexprice/recurring/internal/testutil"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LifecycleServiceSuite struct {
	testutil.BaseServiceTestSuite
	service LifecycleService
}

func TestLifecycleService(t *testing.T) {
	suite.Run(t, new(LifecycleServiceSuite))
}

func (s *LifecycleServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewLifecycleService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *LifecycleServiceSuite) trial(accountID string, endsAt time.Time) *subscription.Subscription {
	sub, err := subscription.NewTrial(s.GetContext(), accountID, endsAt.AddDate(0, 0, -14), 14)
	s.Require().NoError(err)
	sub.TrialEndsAt = &endsAt
	sub.ExpiresAt = &endsAt
	s.Require().NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *LifecycleServiceSuite) active(accountID string, plan types.SubscriptionPlan, periodEnd time.Time) *subscription.Subscription {
	start := periodEnd.AddDate(0, -1, 0)
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		AccountID:          accountID,
		Plan:               plan,
		Status:             types.SubscriptionStatusActive,
		BillingPeriod:      types.BillingPeriodMonthly,
		StartedAt:          start,
		CurrentPeriodStart: &start,
		CurrentPeriodEnd:   &periodEnd,
		ExpiresAt:          &periodEnd,
		Version:            1,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	if plan == types.SubscriptionPlanEnterpriseCustom {
		sub.CustomPrice = decimal.NewNullDecimal(decimal.NewFromInt(100000))
		sub.CustomCurrency = lo.ToPtr("IDR")
		sub.LabelID = lo.ToPtr("lbl_acme")
	}
	s.Require().NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *LifecycleServiceSuite) TestNotifyExpiringTrials() {
	now := s.GetNow()
	s.trial("acc_tomorrow", now.Add(24*time.Hour))
	s.trial("acc_tomorrow_late", time.Date(now.Year(), now.Month(), now.Day()+1, 23, 59, 0, 0, time.UTC))
	s.trial("acc_today", now.Add(time.Hour))
	s.trial("acc_later", now.Add(72*time.Hour))

	report, err := s.service.NotifyExpiringTrials(s.GetContext())
	s.Require().NoError(err)
	s.Equal(JobTrialExpiry, report.Job)
	s.Equal(2, report.Scanned)
	s.Equal(2, report.Succeeded)
	s.Zero(report.Failed)

	notified := lo.Map(s.NotificationsOf(types.NotificationTrialExpiring), func(n notification.Notification, _ int) string { return n.AccountID })
	s.ElementsMatch([]string{"acc_tomorrow", "acc_tomorrow_late"}, notified)
}

func (s *LifecycleServiceSuite) TestNotifyExpiringTrialsUsesConfiguredTimezone() {
	// 10:00 UTC is 17:00 in Jakarta, so Jakarta's tomorrow starts at 17:00 UTC today
	s.GetConfig().Billing.Timezone = "Asia/Jakarta"
	now := s.GetNow()
	s.trial("acc_jakarta_tomorrow", time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, time.UTC))
	s.trial("acc_utc_tomorrow", time.Date(now.Year(), now.Month(), now.Day()+1, 18, 0, 0, 0, time.UTC))

	report, err := s.service.NotifyExpiringTrials(s.GetContext())
	s.Require().NoError(err)
	s.Equal(1, report.Succeeded)

	notes := s.NotificationsOf(types.NotificationTrialExpiring)
	s.Require().Len(notes, 1)
	s.Equal("acc_jakarta_tomorrow", notes[0].AccountID)
}

func (s *LifecycleServiceSuite) TestNotifyExpiringTrialsReportsFailures() {
	s.trial("acc_a", s.GetNow().Add(24*time.Hour))
	s.trial("acc_b", s.GetNow().Add(25*time.Hour))
	s.GetPubSub().FailPublish(errors.New("broker down"))

	report, err := s.service.NotifyExpiringTrials(s.GetContext())
	s.Require().NoError(err)
	s.Equal(2, report.Scanned)
	s.Equal(2, report.Failed)
	s.Len(report.Errors, 2)
	s.Contains(report.Errors[0].Error, "broker down")
}

func (s *LifecycleServiceSuite) TestNotifyExpiringEnterprise() {
	sub := s.active("acc_ent", types.SubscriptionPlanEnterpriseCustom, s.GetNow().Add(30*time.Hour))
	s.active("acc_ent_later", types.SubscriptionPlanEnterpriseCustom, s.GetNow().Add(80*time.Hour))
	s.active("acc_monthly", types.SubscriptionPlanRecurringMonthly, s.GetNow().Add(30*time.Hour))

	report, err := s.service.NotifyExpiringEnterprise(s.GetContext())
	s.Require().NoError(err)
	s.Equal(JobEnterpriseExpiry, report.Job)
	s.Equal(1, report.Scanned)
	s.Equal(1, report.Succeeded)

	notes := s.NotificationsOf(types.NotificationEnterpriseExpiring)
	s.Require().Len(notes, 2)
	recipients := lo.Map(notes, func(n notification.Notification, _ int) string { return n.AccountID })
	s.ElementsMatch([]string{"acc_ent", testutil.DefaultOperatorID}, recipients)
	for _, n := range notes {
		s.Equal(sub.ID, n.Payload["subscription_id"])
		s.Equal("acc_ent", n.Payload["account_id"])
		s.Equal("lbl_acme", n.Payload["label_id"])
	}
}

func (s *LifecycleServiceSuite) TestSweepExpired() {
	yesterday := s.GetNow().Add(-24 * time.Hour)
	tomorrow := s.GetNow().Add(24 * time.Hour)
	lapsed := s.active("acc_lapsed", types.SubscriptionPlanRecurringMonthly, yesterday)
	current := s.active("acc_current", types.SubscriptionPlanRecurringMonthly, tomorrow)
	s.trial("acc_trial", yesterday)

	report, err := s.service.SweepExpired(s.GetContext())
	s.Require().NoError(err)
	s.Equal(JobAutoExpire, report.Job)
	s.Equal(1, report.Scanned)
	s.Equal(1, report.Succeeded)

	got, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), lapsed.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusExpired, got.Status)
	s.False(got.AutoRenew)

	got, err = s.GetStores().SubscriptionRepo.Get(s.GetContext(), current.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, got.Status)

	history, err := s.GetStores().SubscriptionRepo.ListHistory(s.GetContext(), lapsed.ID)
	s.NoError(err)
	s.Require().Len(history, 1)
	s.Equal(types.SubscriptionActionExpired, history[0].Action)
	s.Equal(types.SubscriptionStatusActive, lo.FromPtr(history[0].OldStatus))

	notes := s.NotificationsOf(types.NotificationSubscriptionExpired)
	s.Require().Len(notes, 1)
	s.Equal("acc_lapsed", notes[0].AccountID)

	// a second run finds nothing left to expire
	report, err = s.service.SweepExpired(s.GetContext())
	s.Require().NoError(err)
	s.Zero(report.Scanned)
}

func (s *LifecycleServiceSuite) TestSweepExpiredContinuesPastFailures() {
	yesterday := s.GetNow().Add(-24 * time.Hour)
	s.active("acc_a", types.SubscriptionPlanRecurringMonthly, yesterday)
	broken := s.active("acc_b", types.SubscriptionPlanRecurringMonthly, yesterday)
	s.active("acc_c", types.SubscriptionPlanRecurringYearly, yesterday)
	s.GetStores().SubscriptionRepo.(*testutil.InMemorySubscriptionStore).FailWritesFor("acc_b", errors.New("disk full"))

	report, err := s.service.SweepExpired(s.GetContext())
	s.Require().NoError(err)
	s.Equal(3, report.Scanned)
	s.Equal(2, report.Succeeded)
	s.Equal(1, report.Failed)
	s.Require().Len(report.Errors, 1)
	s.Equal(broken.ID, report.Errors[0].SubscriptionID)
	s.Equal("acc_b", report.Errors[0].AccountID)

	got, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), broken.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, got.Status)
}
