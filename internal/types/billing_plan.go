package types

import (
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/samber/lo"
)

// BillingPlanStatus is the catalog lifecycle of a billing plan
type BillingPlanStatus string

const (
	BillingPlanStatusCreated  BillingPlanStatus = "CREATED"
	BillingPlanStatusActive   BillingPlanStatus = "ACTIVE"
	BillingPlanStatusInactive BillingPlanStatus = "INACTIVE"
)

func (s BillingPlanStatus) Validate() error {
	allowed := []BillingPlanStatus{BillingPlanStatusCreated, BillingPlanStatusActive, BillingPlanStatusInactive}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid billing plan status").
			WithHint("Invalid billing plan status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type BillingPlanFilter struct {
	*QueryFilter

	Provider PaymentProvider     `json:"provider,omitempty" form:"provider"`
	Plan     SubscriptionPlan    `json:"plan,omitempty" form:"plan"`
	Period   BillingPeriod       `json:"period,omitempty" form:"period"`
	Currency string              `json:"currency,omitempty" form:"currency"`
	Statuses []BillingPlanStatus `json:"statuses,omitempty" form:"statuses"`
}

func NewBillingPlanFilter() *BillingPlanFilter {
	return &BillingPlanFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f *BillingPlanFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
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
