package subscription

import (
	"context"
	"time"

	"github.com/flexprice/recurring/internal/types"
	"github.com/shopspring/decimal"
)

// Subscription is the billing and entitlement record of one account. There is at most
// one row per account; seats billed through an enterprise label carry its LabelID.
type Subscription struct {
	ID            string                   `db:"id" json:"id"`
	AccountID     string                   `db:"account_id" json:"account_id"`
	Plan          types.SubscriptionPlan   `db:"plan" json:"plan"`
	Status        types.SubscriptionStatus `db:"status" json:"status"`
	BillingPeriod types.BillingPeriod      `db:"billing_period" json:"billing_period"`

	StartedAt          time.Time  `db:"started_at" json:"started_at"`
	TrialEndsAt        *time.Time `db:"trial_ends_at" json:"trial_ends_at,omitempty"`
	CurrentPeriodStart *time.Time `db:"current_period_start" json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `db:"current_period_end" json:"current_period_end,omitempty"`
	ExpiresAt          *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	AutoRenew          bool       `db:"auto_renew" json:"auto_renew"`

	// CustomPrice and CustomCurrency are set for ENTERPRISE_CUSTOM seats
	CustomPrice    decimal.NullDecimal `db:"custom_price" json:"custom_price,omitempty"`
	CustomCurrency *string             `db:"custom_currency" json:"custom_currency,omitempty"`

	LabelID *string `db:"label_id" json:"label_id,omitempty"`

	// Provider and ExternalAgreementID reference the recurring agreement funding the subscription
	Provider            *types.PaymentProvider `db:"provider" json:"provider,omitempty"`
	ExternalAgreementID *string                `db:"external_agreement_id" json:"external_agreement_id,omitempty"`

	// Version is bumped by every update and compared on write
	Version int `db:"version" json:"version"`

	types.BaseModel
}

// NewTrial builds a TRIAL subscription for an account starting at now
func NewTrial(ctx context.Context, accountID string, now time.Time, trialDays int) (*Subscription, error) {
	trialEnd, err := types.CalculatePeriodEnd(now, types.SubscriptionPlanTrial, "", trialDays)
	if err != nil {
		return nil, err
	}
	return &Subscription{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		AccountID:     accountID,
		Plan:          types.SubscriptionPlanTrial,
		Status:        types.SubscriptionStatusTrial,
		BillingPeriod: types.BillingPeriodMonthly,
		StartedAt:     now,
		TrialEndsAt:   &trialEnd,
		ExpiresAt:     &trialEnd,
		AutoRenew:     false,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}, nil
}

func (s *Subscription) IsTrial() bool {
	return s.Plan == types.SubscriptionPlanTrial
}

func (s *Subscription) IsActive() bool {
	return s.Status == types.SubscriptionStatusActive
}

// IsClosed reports whether the subscription has lapsed or was cancelled
func (s *Subscription) IsClosed() bool {
	return s.Status == types.SubscriptionStatusExpired || s.Status == types.SubscriptionStatusCancelled
}

// IsLapsed reports whether the paid window ended strictly before now
func (s *Subscription) IsLapsed(now time.Time) bool {
	if s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.Before(now) {
		return true
	}
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// Renew activates the subscription on plan for one more period. The new period starts at
// the later of now and the current period end, so an already paid-ahead period never shrinks.
func (s *Subscription) Renew(plan types.SubscriptionPlan, period types.BillingPeriod, now time.Time, trialDays int) error {
	if plan == "" || plan == types.SubscriptionPlanTrial {
		plan = s.Plan
	}
	if period == "" {
		period = s.BillingPeriod
	}
	if plan != types.SubscriptionPlanEnterpriseCustom {
		period = plan.DefaultPeriod()
	}

	base := types.LaterOf(now, s.CurrentPeriodEnd)
	end, err := types.CalculatePeriodEnd(base, plan, period, trialDays)
	if err != nil {
		return err
	}

	s.Plan = plan
	s.BillingPeriod = period
	s.Status = types.SubscriptionStatusActive
	s.CurrentPeriodStart = &base
	s.CurrentPeriodEnd = &end
	expires := types.LaterOf(end, s.ExpiresAt)
	s.ExpiresAt = &expires
	s.CancelledAt = nil
	return nil
}

// Expire closes the subscription at now. The paid window is truncated so a later
// activation starts fresh.
func (s *Subscription) Expire(now time.Time) {
	s.Status = types.SubscriptionStatusExpired
	s.AutoRenew = false
	if s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.After(now) {
		s.CurrentPeriodEnd = &now
	}
	if s.ExpiresAt == nil || s.ExpiresAt.After(now) {
		s.ExpiresAt = &now
	}
}

// Cancel stops renewals. Access stays until the paid window ends.
func (s *Subscription) Cancel(now time.Time) {
	s.Status = types.SubscriptionStatusCancelled
	s.AutoRenew = false
	s.CancelledAt = &now
}

// History is an append-only audit entry for a subscription transition
type History struct {
	ID             string                          `db:"id" json:"id"`
	SubscriptionID string                          `db:"subscription_id" json:"subscription_id"`
	AccountID      string                          `db:"account_id" json:"account_id"`
	Action         types.SubscriptionHistoryAction `db:"action" json:"action"`
	OldStatus      *types.SubscriptionStatus       `db:"old_status" json:"old_status,omitempty"`
	NewStatus      types.SubscriptionStatus        `db:"new_status" json:"new_status"`
	Reason         string                          `db:"reason" json:"reason"`
	Metadata       types.Metadata                  `db:"metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time                       `db:"created_at" json:"created_at"`
	CreatedBy      string                          `db:"created_by" json:"created_by"`
}

// NewHistory records the transition from oldStatus to the subscription's current status
func NewHistory(ctx context.Context, sub *Subscription, action types.SubscriptionHistoryAction, oldStatus types.SubscriptionStatus, reason string, metadata types.Metadata) *History {
	h := &History{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_HISTORY),
		SubscriptionID: sub.ID,
		AccountID:      sub.AccountID,
		Action:         action,
		NewStatus:      sub.Status,
		Reason:         reason,
		Metadata:       metadata,
		CreatedAt:      time.Now().UTC(),
		CreatedBy:      types.GetActor(ctx),
	}
	if oldStatus != "" {
		h.OldStatus = &oldStatus
	}
	return h
}
