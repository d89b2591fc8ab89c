package service

import (
	"time"

	"github.com/flexprice/recurring/internal/cache"
	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/domain/billingplan"
	"github.com/flexprice/recurring/internal/domain/label"
	"github.com/flexprice/recurring/internal/domain/payment"
	"github.com/flexprice/recurring/internal/domain/subscription"
	"github.com/flexprice/recurring/internal/idempotency"
	"github.com/flexprice/recurring/internal/identity"
	"github.com/flexprice/recurring/internal/integration"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/metrics"
	"github.com/flexprice/recurring/internal/notification"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/flexprice/recurring/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	SubRepo         subscription.Repository
	PaymentRepo     payment.Repository
	BillingPlanRepo billingplan.Repository
	LabelRepo       label.Repository

	Cache       cache.Cache
	Providers   *integration.Factory
	Notifier    notification.Notifier
	Identity    identity.Directory
	ReplayGuard idempotency.ReplayGuard
	Metrics     *metrics.Metrics
	Sentry      *sentry.Service

	// Now is the clock every lifecycle decision reads. Defaults to time.Now.
	Now func() time.Time
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	subRepo subscription.Repository,
	paymentRepo payment.Repository,
	billingPlanRepo billingplan.Repository,
	labelRepo label.Repository,
	cache cache.Cache,
	providers *integration.Factory,
	notifier notification.Notifier,
	identity identity.Directory,
	replayGuard idempotency.ReplayGuard,
	metrics *metrics.Metrics,
	sentry *sentry.Service,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		DB:              db,
		SubRepo:         subRepo,
		PaymentRepo:     paymentRepo,
		BillingPlanRepo: billingPlanRepo,
		LabelRepo:       labelRepo,
		Cache:           cache,
		Providers:       providers,
		Notifier:        notifier,
		Identity:        identity,
		ReplayGuard:     replayGuard,
		Metrics:         metrics,
		Sentry:          sentry,
		Now:             time.Now,
	}
}

// now returns the current UTC time from the configured clock
func (p ServiceParams) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}
