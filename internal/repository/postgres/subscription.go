package postgres

import (
	"context"

	"github.com/flexprice/recurring/internal/domain/subscription"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/flexprice/recurring/internal/types"
)

const subscriptionColumns = `id, account_id, plan, status, billing_period, started_at, trial_ends_at,
	current_period_start, current_period_end, expires_at, cancelled_at, auto_renew, custom_price,
	custom_currency, label_id, provider, external_agreement_id, version,
	created_at, updated_at, created_by, updated_by`

var subscriptionSortable = map[string]bool{
	"created_at":         true,
	"updated_at":         true,
	"current_period_end": true,
	"trial_ends_at":      true,
}

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			account_id,
			plan,
			status,
			billing_period,
			started_at,
			trial_ends_at,
			current_period_start,
			current_period_end,
			expires_at,
			cancelled_at,
			auto_renew,
			custom_price,
			custom_currency,
			label_id,
			provider,
			external_agreement_id,
			version,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:account_id,
			:plan,
			:status,
			:billing_period,
			:started_at,
			:trial_ends_at,
			:current_period_start,
			:current_period_end,
			:expires_at,
			:cancelled_at,
			:auto_renew,
			:custom_price,
			:custom_currency,
			:label_id,
			:provider,
			:external_agreement_id,
			:version,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return writeErr(err, "Failed to create subscription", map[string]any{
			"account_id": sub.AccountID,
		})
	}

	r.logger.Debugw("created subscription",
		"subscription_id", sub.ID,
		"account_id", sub.AccountID,
		"plan", sub.Plan,
		"status", sub.Status,
	)
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	return r.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, "id", id)
}

func (r *subscriptionRepository) GetForUpdate(ctx context.Context, id string) (*subscription.Subscription, error) {
	return r.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, "id", id)
}

func (r *subscriptionRepository) GetByAccountID(ctx context.Context, accountID string) (*subscription.Subscription, error) {
	return r.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE account_id = $1`, "account_id", accountID)
}

func (r *subscriptionRepository) GetByAccountIDForUpdate(ctx context.Context, accountID string) (*subscription.Subscription, error) {
	return r.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE account_id = $1 FOR UPDATE`, "account_id", accountID)
}

func (r *subscriptionRepository) GetByExternalAgreementID(ctx context.Context, agreementID string) (*subscription.Subscription, error) {
	return r.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE external_agreement_id = $1`, "external_agreement_id", agreementID)
}

func (r *subscriptionRepository) getOne(ctx context.Context, query string, key string, value string) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	if err := r.db.GetContext(ctx, &sub, query, value); err != nil {
		return nil, notFoundOr(err, "Subscription", map[string]any{key: value})
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			plan = :plan,
			status = :status,
			billing_period = :billing_period,
			trial_ends_at = :trial_ends_at,
			current_period_start = :current_period_start,
			current_period_end = :current_period_end,
			expires_at = :expires_at,
			cancelled_at = :cancelled_at,
			auto_renew = :auto_renew,
			custom_price = :custom_price,
			custom_currency = :custom_currency,
			label_id = :label_id,
			provider = :provider,
			external_agreement_id = :external_agreement_id,
			version = version + 1,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND version = :version
	`

	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return writeErr(err, "Failed to update subscription", map[string]any{
			"subscription_id": sub.ID,
		})
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return versionConflict("Subscription", sub.ID, sub.Version)
	}

	sub.Version++
	return nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}

	var w whereBuilder
	if len(filter.AccountIDs) > 0 {
		w.add("account_id = ANY(?)", stringsOf(filter.AccountIDs))
	}
	if filter.LabelID != "" {
		w.add("label_id = ?", filter.LabelID)
	}
	if len(filter.Plans) > 0 {
		w.add("plan = ANY(?)", stringsOf(filter.Plans))
	}
	if len(filter.Statuses) > 0 {
		w.add("status = ANY(?)", stringsOf(filter.Statuses))
	}
	if filter.TrialEndsFrom != nil {
		w.add("trial_ends_at >= ?", *filter.TrialEndsFrom)
	}
	if filter.TrialEndsTo != nil {
		w.add("trial_ends_at <= ?", *filter.TrialEndsTo)
	}
	if filter.PeriodEndFrom != nil {
		w.add("current_period_end >= ?", *filter.PeriodEndFrom)
	}
	if filter.PeriodEndTo != nil {
		w.add("current_period_end <= ?", *filter.PeriodEndTo)
	}
	if filter.LapsedBefore != nil {
		w.add("(current_period_end < ? OR expires_at < ?)", *filter.LapsedBefore, *filter.LapsedBefore)
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions` + w.sql() + pageSQL(filter.QueryFilter, subscriptionSortable)

	var subs []*subscription.Subscription
	if err := r.db.SelectContext(ctx, &subs, query, w.args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

func (r *subscriptionRepository) CreateHistory(ctx context.Context, history *subscription.History) error {
	query := `
		INSERT INTO subscription_histories (
			id,
			subscription_id,
			account_id,
			action,
			old_status,
			new_status,
			reason,
			metadata,
			created_at,
			created_by
		) VALUES (
			:id,
			:subscription_id,
			:account_id,
			:action,
			:old_status,
			:new_status,
			:reason,
			:metadata,
			:created_at,
			:created_by
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, history); err != nil {
		return writeErr(err, "Failed to record subscription history", map[string]any{
			"subscription_id": history.SubscriptionID,
			"action":          history.Action,
		})
	}
	return nil
}

func (r *subscriptionRepository) ListHistory(ctx context.Context, subscriptionID string) ([]*subscription.History, error) {
	query := `
		SELECT id, subscription_id, account_id, action, old_status, new_status, reason, metadata, created_at, created_by
		FROM subscription_histories
		WHERE subscription_id = $1
		ORDER BY created_at ASC, id ASC
	`

	var histories []*subscription.History
	if err := r.db.SelectContext(ctx, &histories, query, subscriptionID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscription history").
			Mark(ierr.ErrDatabase)
	}
	return histories, nil
}
