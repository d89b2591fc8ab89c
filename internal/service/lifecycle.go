package service

import (
	"context"

	"github.com/flexprice/recurring/internal/api/dto"
	"github.com/flexprice/recurring/internal/domain/subscription"
	"github.com/flexprice/recurring/internal/metrics"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

// Lifecycle job names, used in reports, metrics and cron routes
const (
	JobTrialExpiry      = "trial_expiry"
	JobEnterpriseExpiry = "enterprise_expiry"
	JobAutoExpire       = "auto_expire"
)

// LifecycleService holds the time-driven sweeps. Every job processes its items
// independently: one failing item is reported and the sweep continues.
type LifecycleService interface {
	// NotifyExpiringTrials notifies every TRIAL account whose trial ends tomorrow
	NotifyExpiringTrials(ctx context.Context) (*dto.SweepReport, error)
	// NotifyExpiringEnterprise notifies ENTERPRISE_CUSTOM accounts whose period ends
	// tomorrow, and every operator about each of them
	NotifyExpiringEnterprise(ctx context.Context) (*dto.SweepReport, error)
	// SweepExpired expires ACTIVE subscriptions whose paid window already ended
	SweepExpired(ctx context.Context) (*dto.SweepReport, error)
}

type lifecycleService struct {
	ServiceParams
}

func NewLifecycleService(params ServiceParams) LifecycleService {
	return &lifecycleService{ServiceParams: params}
}

func (s *lifecycleService) NotifyExpiringTrials(ctx context.Context) (*dto.SweepReport, error) {
	from, to := types.TomorrowWindow(s.now(), s.Config.Billing.Location())
	filter := types.NewSubscriptionFilter()
	filter.Statuses = []types.SubscriptionStatus{types.SubscriptionStatusTrial}
	filter.TrialEndsFrom = &from
	filter.TrialEndsTo = &to

	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.sweep(ctx, JobTrialExpiry, subs, func(ctx context.Context, sub *subscription.Subscription) error {
		return s.Notifier.Notify(ctx, sub.AccountID, types.NotificationTrialExpiring, map[string]any{
			"subscription_id": sub.ID,
			"trial_ends_at":   sub.TrialEndsAt,
		})
	}), nil
}

func (s *lifecycleService) NotifyExpiringEnterprise(ctx context.Context) (*dto.SweepReport, error) {
	from, to := types.TomorrowWindow(s.now(), s.Config.Billing.Location())
	filter := types.NewSubscriptionFilter()
	filter.Plans = []types.SubscriptionPlan{types.SubscriptionPlanEnterpriseCustom}
	filter.Statuses = []types.SubscriptionStatus{types.SubscriptionStatusActive}
	filter.PeriodEndFrom = &from
	filter.PeriodEndTo = &to

	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	operators, err := s.Identity.ListOperators(ctx)
	if err != nil {
		return nil, err
	}

	return s.sweep(ctx, JobEnterpriseExpiry, subs, func(ctx context.Context, sub *subscription.Subscription) error {
		payload := map[string]any{
			"subscription_id":    sub.ID,
			"account_id":         sub.AccountID,
			"label_id":           lo.FromPtr(sub.LabelID),
			"current_period_end": sub.CurrentPeriodEnd,
		}
		if err := s.Notifier.Notify(ctx, sub.AccountID, types.NotificationEnterpriseExpiring, payload); err != nil {
			return err
		}
		for _, operator := range lo.Without(operators, sub.AccountID) {
			if err := s.Notifier.Notify(ctx, operator, types.NotificationEnterpriseExpiring, payload); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

func (s *lifecycleService) SweepExpired(ctx context.Context) (*dto.SweepReport, error) {
	now := s.now()
	filter := types.NewSubscriptionFilter()
	filter.Statuses = []types.SubscriptionStatus{types.SubscriptionStatusActive}
	filter.LapsedBefore = &now

	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.sweep(ctx, JobAutoExpire, subs, s.expire), nil
}

// expire re-reads the row under lock so a renewal that landed after the scan wins
func (s *lifecycleService) expire(ctx context.Context, sub *subscription.Subscription) error {
	var expired *subscription.Subscription
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.SubRepo.GetForUpdate(ctx, sub.ID)
		if err != nil {
			return err
		}
		now := s.now()
		if !current.IsActive() || !current.IsLapsed(now) {
			return nil
		}

		oldStatus := current.Status
		current.Expire(now)
		current.Touch(ctx, now)
		if err := s.SubRepo.Update(ctx, current); err != nil {
			return err
		}
		expired = current
		return s.SubRepo.CreateHistory(ctx, subscription.NewHistory(ctx, current, types.SubscriptionActionExpired, oldStatus,
			"paid period ended", types.Metadata{"job": JobAutoExpire}))
	})
	if err != nil || expired == nil {
		return err
	}

	s.Metrics.SubscriptionsExpired.WithLabelValues("lapsed").Inc()
	s.dispatch(ctx, notices{{
		accountID: expired.AccountID,
		kind:      types.NotificationSubscriptionExpired,
		payload: map[string]any{
			"subscription_id": expired.ID,
			"reason":          "paid period ended",
		},
	}})
	return nil
}

// sweep runs fn over every item, capturing failures per item
func (s *lifecycleService) sweep(ctx context.Context, job string, subs []*subscription.Subscription, fn func(context.Context, *subscription.Subscription) error) *dto.SweepReport {
	report := &dto.SweepReport{Job: job, Scanned: len(subs)}
	for _, sub := range subs {
		if err := fn(ctx, sub); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, dto.SweepError{
				SubscriptionID: sub.ID,
				AccountID:      sub.AccountID,
				Error:          err.Error(),
			})
			s.Metrics.SweepItemsTotal.WithLabelValues(job, metrics.OutcomeFailed).Inc()
			s.Logger.Errorw("lifecycle sweep item failed",
				"error", err,
				"job", job,
				"subscription_id", sub.ID,
				"account_id", sub.AccountID)
			continue
		}
		report.Succeeded++
		s.Metrics.SweepItemsTotal.WithLabelValues(job, metrics.OutcomeSuccess).Inc()
	}

	s.Logger.Infow("lifecycle sweep finished",
		"job", job,
		"scanned", report.Scanned,
		"succeeded", report.Succeeded,
		"failed", report.Failed)
	return report
}
