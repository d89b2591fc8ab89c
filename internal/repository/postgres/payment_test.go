package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flexprice/recurring/internal/domain/payment"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/flexprice/recurring/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewDBFromSQLX(sqlx.NewDb(db, "postgres"), logger.NewNoopLogger()), mock
}

var paymentRowColumns = []string{
	"id", "account_id", "subscription_id", "label_id", "amount", "currency", "provider", "status",
	"external_id", "invoice_number", "checkout_url", "metadata", "paid_at", "failed_at", "failure_reason", "version",
	"created_at", "updated_at", "created_by", "updated_by",
}

func testPayment() *payment.Payment {
	return &payment.Payment{
		ID:             "pay_1",
		AccountID:      "acc_1",
		SubscriptionID: lo.ToPtr("subs_1"),
		Amount:         decimal.NewFromInt(15),
		Currency:       "USD",
		Provider:       types.PaymentProviderStripe,
		Status:         types.PaymentStatusPending,
		ExternalID:     lo.ToPtr("cs_test_1"),
		InvoiceNumber:  "INV-1",
		Metadata: payment.NewSimpleMetadata(payment.SimpleDetails{
			CheckoutMode: types.CheckoutModeSubscription,
			Plan:         types.SubscriptionPlanRecurringMonthly,
		}),
		Version:   3,
		BaseModel: types.GetDefaultBaseModel(context.Background()),
	}
}

func TestPaymentRepository_GetByExternalID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, logger.NewNoopLogger())
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(paymentRowColumns).AddRow(
		"pay_1", "acc_1", "subs_1", nil, "15.0000", "USD", "stripe", "PENDING",
		"cs_test_1", "INV-1", "https://checkout.stripe.com/c/pay/cs_test_1",
		[]byte(`{"mode":"SIMPLE","simple":{"checkout_mode":"subscription","plan":"RECURRING_MONTHLY"}}`),
		nil, nil, nil, 2,
		now, now, "acc_1", "acc_1",
	)
	mock.ExpectQuery(`SELECT (.+) FROM payments WHERE provider = \$1 AND external_id = \$2$`).
		WithArgs("stripe", "cs_test_1").
		WillReturnRows(rows)

	p, err := repo.GetByExternalID(context.Background(), types.PaymentProviderStripe, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, "pay_1", p.ID)
	assert.Equal(t, types.PaymentProviderStripe, p.Provider)
	assert.True(t, decimal.NewFromInt(15).Equal(p.Amount))
	assert.Equal(t, types.PaymentModeSimple, p.Metadata.Mode)
	assert.Equal(t, types.SubscriptionPlanRecurringMonthly, p.Metadata.Simple.Plan)
	assert.Equal(t, "subs_1", p.GetSubscriptionID())
	assert.Nil(t, p.LabelID)
	assert.Equal(t, 2, p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_GetByExternalIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, logger.NewNoopLogger())

	mock.ExpectQuery(`SELECT (.+) FROM payments WHERE provider = \$1 AND external_id = \$2 FOR UPDATE`).
		WithArgs("xendit", "inv_missing").
		WillReturnRows(sqlmock.NewRows(paymentRowColumns))

	_, err := repo.GetByExternalIDForUpdate(context.Background(), types.PaymentProviderXendit, "inv_missing")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_UpdateComparesVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, logger.NewNoopLogger())

	p := testPayment()
	mock.ExpectExec(`UPDATE payments SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), p))
	assert.Equal(t, 4, p.Version)

	mock.ExpectExec(`UPDATE payments SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), p)
	require.Error(t, err)
	assert.True(t, ierr.IsVersionConflict(err))
	assert.Equal(t, 4, p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_CreateDuplicateExternalID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, logger.NewNoopLogger())

	mock.ExpectExec(`INSERT INTO payments`).WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key"})

	err := repo.Create(context.Background(), testPayment())
	require.Error(t, err)
	assert.True(t, ierr.IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_CreateRejectsInconsistentMetadata(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, logger.NewNoopLogger())

	p := testPayment()
	p.Metadata.Mode = types.PaymentModeOrgInvoice

	err := repo.Create(context.Background(), p)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_CountFailedSince(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, logger.NewNoopLogger())
	since := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payments\s+WHERE subscription_id = \$1 AND status = \$2 AND failed_at >= \$3\s+AND \(failure_reason IS NULL OR failure_reason <> \$4\)`).
		WithArgs("subs_1", "FAILED", since, "expired").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountFailedSince(context.Background(), "subs_1", since)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_ListByAgreement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, logger.NewNoopLogger())
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(paymentRowColumns).AddRow(
		"pay_1", "acc_1", "subs_1", nil, "15.0000", "USD", "stripe", "PAID",
		"cs_test_1", "INV-1", nil,
		[]byte(`{"mode":"SIMPLE","simple":{"checkout_mode":"subscription","plan":"RECURRING_MONTHLY","agreement_id":"sub_A"}}`),
		now, nil, nil, 2,
		now, now, "acc_1", "acc_1",
	)
	mock.ExpectQuery(`SELECT (.+) FROM payments WHERE provider = \$1 AND metadata->'simple'->>'agreement_id' = \$2 ORDER BY`).
		WithArgs("stripe", "sub_A").
		WillReturnRows(rows)

	filter := types.NewPaymentFilter()
	filter.QueryFilter = types.NewNoLimitQueryFilter()
	filter.Provider = types.PaymentProviderStripe
	filter.AgreementID = "sub_A"

	payments, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "sub_A", payments[0].Metadata.Simple.AgreementID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
