package postgres

import (
	"context"
	"time"

	"github.com/flexprice/recurring/internal/domain/payment"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/flexprice/recurring/internal/types"
)

const paymentColumns = `id, account_id, subscription_id, label_id, amount, currency, provider, status,
	external_id, invoice_number, checkout_url, metadata, paid_at, failed_at, failure_reason, version,
	created_at, updated_at, created_by, updated_by`

var paymentSortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"paid_at":    true,
	"amount":     true,
}

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if err := p.Metadata.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO payments (
			id,
			account_id,
			subscription_id,
			label_id,
			amount,
			currency,
			provider,
			status,
			external_id,
			invoice_number,
			checkout_url,
			metadata,
			paid_at,
			failed_at,
			failure_reason,
			version,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:account_id,
			:subscription_id,
			:label_id,
			:amount,
			:currency,
			:provider,
			:status,
			:external_id,
			:invoice_number,
			:checkout_url,
			:metadata,
			:paid_at,
			:failed_at,
			:failure_reason,
			:version,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return writeErr(err, "Failed to create payment", map[string]any{
			"payment_id":  p.ID,
			"provider":    p.Provider,
			"external_id": p.GetExternalID(),
		})
	}

	r.logger.Debugw("created payment",
		"payment_id", p.ID,
		"account_id", p.AccountID,
		"provider", p.Provider,
		"mode", p.Metadata.Mode,
		"amount", p.Amount.String(),
		"currency", p.Currency,
	)
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`,
		map[string]any{"payment_id": id}, id)
}

func (r *paymentRepository) GetForUpdate(ctx context.Context, id string) (*payment.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`,
		map[string]any{"payment_id": id}, id)
}

func (r *paymentRepository) GetByExternalID(ctx context.Context, provider types.PaymentProvider, externalID string) (*payment.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE provider = $1 AND external_id = $2`,
		map[string]any{"provider": provider, "external_id": externalID}, string(provider), externalID)
}

func (r *paymentRepository) GetByExternalIDForUpdate(ctx context.Context, provider types.PaymentProvider, externalID string) (*payment.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE provider = $1 AND external_id = $2 FOR UPDATE`,
		map[string]any{"provider": provider, "external_id": externalID}, string(provider), externalID)
}

func (r *paymentRepository) getOne(ctx context.Context, query string, details map[string]any, args ...interface{}) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, notFoundOr(err, "Payment", details)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	if err := p.Metadata.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE payments SET
			subscription_id = :subscription_id,
			label_id = :label_id,
			amount = :amount,
			status = :status,
			external_id = :external_id,
			checkout_url = :checkout_url,
			metadata = :metadata,
			paid_at = :paid_at,
			failed_at = :failed_at,
			failure_reason = :failure_reason,
			version = version + 1,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND version = :version
	`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return writeErr(err, "Failed to update payment", map[string]any{
			"payment_id": p.ID,
		})
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return versionConflict("Payment", p.ID, p.Version)
	}

	p.Version++
	return nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}

	var w whereBuilder
	if filter.AccountID != "" {
		w.add("account_id = ?", filter.AccountID)
	}
	if filter.SubscriptionID != "" {
		w.add("subscription_id = ?", filter.SubscriptionID)
	}
	if filter.LabelID != "" {
		w.add("label_id = ?", filter.LabelID)
	}
	if filter.Provider != "" {
		w.add("provider = ?", string(filter.Provider))
	}
	if filter.AgreementID != "" {
		w.add("metadata->'simple'->>'agreement_id' = ?", filter.AgreementID)
	}
	if len(filter.Statuses) > 0 {
		w.add("status = ANY(?)", stringsOf(filter.Statuses))
	}

	query := `SELECT ` + paymentColumns + ` FROM payments` + w.sql() + pageSQL(filter.QueryFilter, paymentSortable)

	var payments []*payment.Payment
	if err := r.db.SelectContext(ctx, &payments, query, w.args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}

func (r *paymentRepository) CountFailedSince(ctx context.Context, subscriptionID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM payments
		WHERE subscription_id = $1 AND status = $2 AND failed_at >= $3
		AND (failure_reason IS NULL OR failure_reason <> $4)
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, subscriptionID, string(types.PaymentStatusFailed), since, types.FailureReasonExpired); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count failed payments").
			WithReportableDetails(map[string]any{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
