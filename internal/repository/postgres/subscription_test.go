package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flexprice/recurring/internal/domain/subscription"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subscriptionRowColumns = []string{
	"id", "account_id", "plan", "status", "billing_period", "started_at", "trial_ends_at",
	"current_period_start", "current_period_end", "expires_at", "cancelled_at", "auto_renew", "custom_price",
	"custom_currency", "label_id", "provider", "external_agreement_id", "version",
	"created_at", "updated_at", "created_by", "updated_by",
}

func TestSubscriptionRepository_GetByAccountID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubscriptionRepository(db, logger.NewNoopLogger())
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 1, 0)

	rows := sqlmock.NewRows(subscriptionRowColumns).AddRow(
		"subs_1", "acc_1", "ENTERPRISE_CUSTOM", "ACTIVE", "YEARLY", now, nil,
		now, end, end, nil, true, "100000.0000",
		"IDR", "label_1", "manual", nil, 5,
		now, now, "system", "system",
	)
	mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE account_id = \$1$`).
		WithArgs("acc_1").
		WillReturnRows(rows)

	sub, err := repo.GetByAccountID(context.Background(), "acc_1")
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionPlanEnterpriseCustom, sub.Plan)
	assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, types.BillingPeriodYearly, sub.BillingPeriod)
	assert.True(t, sub.CustomPrice.Valid)
	assert.Equal(t, "100000", sub.CustomPrice.Decimal.String())
	assert.Equal(t, "label_1", lo.FromPtr(sub.LabelID))
	assert.Equal(t, types.PaymentProviderManual, lo.FromPtr(sub.Provider))
	assert.Nil(t, sub.ExternalAgreementID)
	assert.Equal(t, end, lo.FromPtr(sub.CurrentPeriodEnd))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_ListLapsed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubscriptionRepository(db, logger.NewNoopLogger())
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	filter := types.NewSubscriptionFilter()
	filter.Statuses = []types.SubscriptionStatus{types.SubscriptionStatusActive}
	filter.LapsedBefore = &now

	mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE status = ANY\(\$1\) AND \(current_period_end < \$2 OR expires_at < \$3\) ORDER BY created_at ASC, id ASC$`).
		WithArgs(pq.StringArray{"ACTIVE"}, now, now).
		WillReturnRows(sqlmock.NewRows(subscriptionRowColumns))

	subs, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_UpdateVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubscriptionRepository(db, logger.NewNoopLogger())

	sub := testSubscription()
	mock.ExpectExec(`UPDATE subscriptions SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), sub)
	require.Error(t, err)
	assert.True(t, ierr.IsVersionConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_CreateDuplicateAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubscriptionRepository(db, logger.NewNoopLogger())

	mock.ExpectExec(`INSERT INTO subscriptions`).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), testSubscription())
	require.Error(t, err)
	assert.True(t, ierr.IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func testSubscription() *subscription.Subscription {
	sub, _ := subscription.NewTrial(context.Background(), "acc_1", time.Now().UTC(), 14)
	return sub
}
