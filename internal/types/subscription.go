package types

import (
	"time"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionPlan is the commercial tier a subscription is billed on
type SubscriptionPlan string

const (
	SubscriptionPlanTrial            SubscriptionPlan = "TRIAL"
	SubscriptionPlanRecurringMonthly SubscriptionPlan = "RECURRING_MONTHLY"
	SubscriptionPlanRecurringYearly  SubscriptionPlan = "RECURRING_YEARLY"
	SubscriptionPlanEnterpriseCustom SubscriptionPlan = "ENTERPRISE_CUSTOM"
)

func (p SubscriptionPlan) String() string {
	return string(p)
}

func (p SubscriptionPlan) Validate() error {
	allowed := []SubscriptionPlan{
		SubscriptionPlanTrial,
		SubscriptionPlanRecurringMonthly,
		SubscriptionPlanRecurringYearly,
		SubscriptionPlanEnterpriseCustom,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid subscription plan").
			WithHint("Invalid subscription plan").
			WithReportableDetails(map[string]any{
				"plan":          p,
				"allowed_plans": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsPurchasable reports whether the plan can be bought through checkout
func (p SubscriptionPlan) IsPurchasable() bool {
	return p != SubscriptionPlanTrial
}

// DefaultPeriod returns the billing period implied by the plan itself
func (p SubscriptionPlan) DefaultPeriod() BillingPeriod {
	if p == SubscriptionPlanRecurringYearly {
		return BillingPeriodYearly
	}
	return BillingPeriodMonthly
}

type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "TRIAL"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPaused    SubscriptionStatus = "PAUSED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusTrial,
		SubscriptionStatusActive,
		SubscriptionStatusPaused,
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "MONTHLY"
	BillingPeriodYearly  BillingPeriod = "YEARLY"
)

func (p BillingPeriod) String() string {
	return string(p)
}

func (p BillingPeriod) Validate() error {
	allowed := []BillingPeriod{BillingPeriodMonthly, BillingPeriodYearly}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid billing period").
			WithHint("Billing period must be MONTHLY or YEARLY").
			WithReportableDetails(map[string]any{
				"period":          p,
				"allowed_periods": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionHistoryAction names the transition recorded in a history entry
type SubscriptionHistoryAction string

const (
	SubscriptionActionTrialStarted SubscriptionHistoryAction = "TRIAL_STARTED"
	SubscriptionActionActivated    SubscriptionHistoryAction = "ACTIVATED"
	SubscriptionActionRenewed      SubscriptionHistoryAction = "RENEWED"
	SubscriptionActionSuspended    SubscriptionHistoryAction = "SUSPENDED"
	SubscriptionActionDeactivated  SubscriptionHistoryAction = "DEACTIVATED"
	SubscriptionActionExpired      SubscriptionHistoryAction = "EXPIRED"
	SubscriptionActionCancelled    SubscriptionHistoryAction = "CANCELLED"
	SubscriptionActionBulkActivate SubscriptionHistoryAction = "BULK_ACTIVATED"
)

// SubscriptionFilter narrows subscription listings used by the lifecycle sweeps
type SubscriptionFilter struct {
	*QueryFilter

	AccountIDs []string             `json:"account_ids,omitempty" form:"account_ids"`
	LabelID    string               `json:"label_id,omitempty" form:"label_id"`
	Plans      []SubscriptionPlan   `json:"plans,omitempty" form:"plans"`
	Statuses   []SubscriptionStatus `json:"statuses,omitempty" form:"statuses"`

	// TrialEndsFrom and TrialEndsTo bound trial_ends_at inclusively
	TrialEndsFrom *time.Time `json:"trial_ends_from,omitempty" form:"trial_ends_from"`
	TrialEndsTo   *time.Time `json:"trial_ends_to,omitempty" form:"trial_ends_to"`

	// PeriodEndFrom and PeriodEndTo bound current_period_end inclusively
	PeriodEndFrom *time.Time `json:"period_end_from,omitempty" form:"period_end_from"`
	PeriodEndTo   *time.Time `json:"period_end_to,omitempty" form:"period_end_to"`

	// LapsedBefore matches rows whose current_period_end or expires_at is strictly before it
	LapsedBefore *time.Time `json:"lapsed_before,omitempty" form:"lapsed_before"`
}

func NewSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *SubscriptionFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	for _, p := range f.Plans {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.Statuses {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
