package testutil

import (
	"context"
	"encoding/json"
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
	"github.com/flexprice/recurring/internal/integration/manual"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/metrics"
	"github.com/flexprice/recurring/internal/notification"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/flexprice/recurring/internal/sentry"
	"github.com/flexprice/recurring/internal/types"
	"github.com/flexprice/recurring/internal/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	SubscriptionRepo subscription.Repository
	PaymentRepo      payment.Repository
	BillingPlanRepo  billingplan.Repository
	LabelRepo        label.Repository
}

// Providers holds the scripted provider adapters
type Providers struct {
	Xendit *FixtureProvider
	Stripe *FixtureProvider
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	providers Providers
	factory   *integration.Factory
	pubSub    *InMemoryPubSub
	notifier  notification.Notifier
	identity  identity.Directory
	guard     idempotency.ReplayGuard
	cache     cache.Cache
	metrics   *metrics.Metrics
	sentry    *sentry.Service
	db        postgres.IClient
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()
	s.logger = logger.NewNoopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.config = config.GetDefaultConfig()
	s.config.Identity.Operators = []string{DefaultOperatorID}
	s.config.Providers.RetryInitialInterval = time.Millisecond
	s.now = time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)

	s.ctx = SetupContext()
	s.setupStores()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		PaymentRepo:      NewInMemoryPaymentStore(),
		BillingPlanRepo:  NewInMemoryBillingPlanStore(),
		LabelRepo:        NewInMemoryLabelStore(),
	}

	s.providers = Providers{
		Xendit: NewFixtureProvider(types.PaymentProviderXendit),
		Stripe: NewFixtureProvider(types.PaymentProviderStripe),
	}
	s.factory = integration.NewFactoryWithProviders(s.logger,
		s.providers.Xendit,
		s.providers.Stripe,
		manual.NewClient(s.logger),
	)

	s.db = NewMockPostgresClient(s.logger)
	s.cache = cache.NewInMemoryCache(s.config)
	s.guard = idempotency.NewCacheReplayGuard(s.cache, s.config.Providers.ReplayTTL)
	s.pubSub = NewInMemoryPubSub()
	s.notifier = notification.NewNotifier(s.pubSub, s.config, s.logger)
	s.metrics = metrics.NewMetricsWithRegistry(prometheus.NewRegistry())
	s.sentry = sentry.NewSentryService(s.config, s.logger)

	directory, err := identity.NewStaticDirectory(s.config)
	if err != nil {
		s.T().Fatalf("failed to create identity directory: %v", err)
	}
	s.identity = directory
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.BillingPlanRepo.(*InMemoryBillingPlanStore).Clear()
	s.stores.LabelRepo.(*InMemoryLabelStore).Clear()
	s.pubSub.ClearMessages()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context, acting as the default operator
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetProviders returns the scripted provider adapters
func (s *BaseServiceTestSuite) GetProviders() Providers {
	return s.providers
}

func (s *BaseServiceTestSuite) GetProviderFactory() *integration.Factory {
	return s.factory
}

func (s *BaseServiceTestSuite) GetNotifier() notification.Notifier {
	return s.notifier
}

func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubSub
}

func (s *BaseServiceTestSuite) GetIdentity() identity.Directory {
	return s.identity
}

func (s *BaseServiceTestSuite) GetReplayGuard() idempotency.ReplayGuard {
	return s.guard
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetMetrics() *metrics.Metrics {
	return s.metrics
}

func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the frozen test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// Clock returns a clock reading the suite's frozen time. Advance moves it.
func (s *BaseServiceTestSuite) Clock() func() time.Time {
	return func() time.Time { return s.now.UTC() }
}

// Advance moves the frozen test time forward
func (s *BaseServiceTestSuite) Advance(d time.Duration) {
	s.now = s.now.Add(d)
}

// Notifications decodes everything published on the notification topic
func (s *BaseServiceTestSuite) Notifications() []notification.Notification {
	var out []notification.Notification
	for _, msg := range s.pubSub.GetMessages(s.config.Notification.Topic) {
		var n notification.Notification
		if err := json.Unmarshal(msg.Payload, &n); err != nil {
			s.T().Fatalf("failed to decode notification: %v", err)
		}
		out = append(out, n)
	}
	return out
}

// NotificationsOf filters Notifications by kind
func (s *BaseServiceTestSuite) NotificationsOf(kind types.NotificationKind) []notification.Notification {
	var out []notification.Notification
	for _, n := range s.Notifications() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
