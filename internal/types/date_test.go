package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	wib = time.FixedZone("WIB", 7*60*60)
	pst = time.FixedZone("PST", -8*60*60)
)

func TestNextBillingDate(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		period  BillingPeriod
		want    time.Time
		wantErr bool
	}{
		{
			name:   "monthly simple",
			start:  time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			period: BillingPeriodMonthly,
			want:   time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly end of month clamps to leap february",
			start:  time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
			period: BillingPeriodMonthly,
			want:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly end of month clamps to non leap february",
			start:  time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC),
			period: BillingPeriodMonthly,
			want:   time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly crosses year",
			start:  time.Date(2024, time.December, 15, 10, 30, 0, 0, wib),
			period: BillingPeriodMonthly,
			want:   time.Date(2025, time.January, 15, 10, 30, 0, 0, wib),
		},
		{
			name:   "yearly from leap day",
			start:  time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
			period: BillingPeriodYearly,
			want:   time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "invalid period",
			start:   time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			period:  BillingPeriod("WEEKLY"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextBillingDate(tt.start, tt.period)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestCalculatePeriodEnd(t *testing.T) {
	start := time.Date(2024, time.May, 31, 12, 0, 0, 0, time.UTC)

	got, err := CalculatePeriodEnd(start, SubscriptionPlanRecurringMonthly, "", 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC), got)

	got, err = CalculatePeriodEnd(start, SubscriptionPlanRecurringYearly, BillingPeriodMonthly, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.May, 31, 12, 0, 0, 0, time.UTC), got, "plan period wins over explicit period")

	got, err = CalculatePeriodEnd(start, SubscriptionPlanEnterpriseCustom, BillingPeriodYearly, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.May, 31, 12, 0, 0, 0, time.UTC), got)

	got, err = CalculatePeriodEnd(start, SubscriptionPlanTrial, "", 0)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, DefaultTrialDays), got)

	got, err = CalculatePeriodEnd(start, SubscriptionPlanTrial, "", 7)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, 7), got)

	_, err = CalculatePeriodEnd(start, SubscriptionPlan("GOLD"), "", 0)
	require.Error(t, err)
}

func TestTomorrowWindow(t *testing.T) {
	// 2024-03-10 20:00 PST is already 2024-03-11 in WIB
	now := time.Date(2024, time.March, 10, 20, 0, 0, 0, pst)

	start, end := TomorrowWindow(now, wib)
	assert.Equal(t, time.Date(2024, time.March, 12, 0, 0, 0, 0, wib), start)
	assert.Equal(t, time.Date(2024, time.March, 12, 23, 59, 59, 999999999, wib), end)

	start, end = TomorrowWindow(now, pst)
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, pst), start)
	assert.True(t, end.Before(time.Date(2024, time.March, 12, 0, 0, 0, 0, pst)))
}

func TestAddClampedDateAddsDaysAfterClamping(t *testing.T) {
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), AddClampedDate(start, 0, 1, 1))
}
