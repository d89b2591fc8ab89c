package postgres

import (
	"context"

	"github.com/flexprice/recurring/internal/domain/billingplan"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/flexprice/recurring/internal/types"
)

const billingPlanColumns = `id, provider, plan, period, currency, price, status, name, external_price_id,
	created_at, updated_at, created_by, updated_by`

var billingPlanSortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"price":      true,
}

type billingPlanRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewBillingPlanRepository(db *postgres.DB, logger *logger.Logger) billingplan.Repository {
	return &billingPlanRepository{db: db, logger: logger}
}

func (r *billingPlanRepository) Create(ctx context.Context, plan *billingplan.BillingPlan) error {
	query := `
		INSERT INTO billing_plans (
			id,
			provider,
			plan,
			period,
			currency,
			price,
			status,
			name,
			external_price_id,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:provider,
			:plan,
			:period,
			:currency,
			:price,
			:status,
			:name,
			:external_price_id,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return writeErr(err, "Failed to create billing plan", map[string]any{
			"provider": plan.Provider,
			"plan":     plan.Plan,
			"period":   plan.Period,
			"currency": plan.Currency,
		})
	}
	return nil
}

func (r *billingPlanRepository) Get(ctx context.Context, id string) (*billingplan.BillingPlan, error) {
	var plan billingplan.BillingPlan
	query := `SELECT ` + billingPlanColumns + ` FROM billing_plans WHERE id = $1`
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, notFoundOr(err, "Billing plan", map[string]any{"billing_plan_id": id})
	}
	return &plan, nil
}

func (r *billingPlanRepository) GetActive(ctx context.Context, provider types.PaymentProvider, plan types.SubscriptionPlan, period types.BillingPeriod, currency string) (*billingplan.BillingPlan, error) {
	var bp billingplan.BillingPlan
	query := `SELECT ` + billingPlanColumns + ` FROM billing_plans
		WHERE provider = $1 AND plan = $2 AND period = $3 AND currency = $4 AND status = $5`
	err := r.db.GetContext(ctx, &bp, query,
		string(provider), string(plan), string(period), types.NormalizeCurrency(currency), string(types.BillingPlanStatusActive))
	if err != nil {
		return nil, notFoundOr(err, "Billing plan", map[string]any{
			"provider": provider,
			"plan":     plan,
			"period":   period,
			"currency": currency,
		})
	}
	return &bp, nil
}

func (r *billingPlanRepository) Update(ctx context.Context, plan *billingplan.BillingPlan) error {
	query := `
		UPDATE billing_plans SET
			price = :price,
			status = :status,
			name = :name,
			external_price_id = :external_price_id,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, plan)
	if err != nil {
		return writeErr(err, "Failed to update billing plan", map[string]any{"billing_plan_id": plan.ID})
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewError("billing plan not found").
			WithHint("Billing plan not found").
			WithReportableDetails(map[string]any{"billing_plan_id": plan.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *billingPlanRepository) List(ctx context.Context, filter *types.BillingPlanFilter) ([]*billingplan.BillingPlan, error) {
	if filter == nil {
		filter = types.NewBillingPlanFilter()
	}

	var w whereBuilder
	if filter.Provider != "" {
		w.add("provider = ?", string(filter.Provider))
	}
	if filter.Plan != "" {
		w.add("plan = ?", string(filter.Plan))
	}
	if filter.Period != "" {
		w.add("period = ?", string(filter.Period))
	}
	if filter.Currency != "" {
		w.add("currency = ?", types.NormalizeCurrency(filter.Currency))
	}
	if len(filter.Statuses) > 0 {
		w.add("status = ANY(?)", stringsOf(filter.Statuses))
	}

	query := `SELECT ` + billingPlanColumns + ` FROM billing_plans` + w.sql() + pageSQL(filter.QueryFilter, billingPlanSortable)

	var plans []*billingplan.BillingPlan
	if err := r.db.SelectContext(ctx, &plans, query, w.args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list billing plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}
