package types

import (
	"time"

	ierr "github.com/flexprice/recurring/internal/errors"
)

// DefaultTrialDays is used when no trial length is configured
const DefaultTrialDays = 14

// AddClampedDate adds years and months to t, clamping the day to the last valid day
// of the target month (Jan 31 + 1 month = Feb 28/29), then adds days.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	// If we move beyond December, it adjusts correctly,
	// for example adding 2 months to November will land on January next year.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	lastDay := time.Date(newY, newM+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}

	return time.Date(newY, newM, d, h, min, sec, t.Nanosecond(), t.Location()).AddDate(0, 0, days)
}

// NextBillingDate advances start by exactly one billing period.
func NextBillingDate(start time.Time, period BillingPeriod) (time.Time, error) {
	switch period {
	case BillingPeriodMonthly:
		return AddClampedDate(start, 0, 1, 0), nil
	case BillingPeriodYearly:
		return AddClampedDate(start, 1, 0, 0), nil
	default:
		return start, ierr.NewErrorf("invalid billing period type: %s", period).
			WithHint("Billing period must be MONTHLY or YEARLY").
			Mark(ierr.ErrValidation)
	}
}

// CalculatePeriodEnd returns the end of the period that starts at start for the given plan.
// RECURRING_* plans imply their own period, ENTERPRISE_CUSTOM uses the explicit period and
// TRIAL lasts trialDays.
func CalculatePeriodEnd(start time.Time, plan SubscriptionPlan, period BillingPeriod, trialDays int) (time.Time, error) {
	switch plan {
	case SubscriptionPlanTrial:
		if trialDays <= 0 {
			trialDays = DefaultTrialDays
		}
		return start.AddDate(0, 0, trialDays), nil
	case SubscriptionPlanRecurringMonthly:
		return NextBillingDate(start, BillingPeriodMonthly)
	case SubscriptionPlanRecurringYearly:
		return NextBillingDate(start, BillingPeriodYearly)
	case SubscriptionPlanEnterpriseCustom:
		if period == "" {
			period = BillingPeriodMonthly
		}
		return NextBillingDate(start, period)
	default:
		return start, ierr.NewErrorf("invalid subscription plan: %s", plan).
			WithHint("Invalid subscription plan").
			Mark(ierr.ErrValidation)
	}
}

// DayWindow returns the [00:00:00, 23:59:59.999999999] bounds of the calendar day
// that is offset days away from now, evaluated in loc.
func DayWindow(now time.Time, offset int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, offset)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// TomorrowWindow is DayWindow for the next calendar day
func TomorrowWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	return DayWindow(now, 1, loc)
}
