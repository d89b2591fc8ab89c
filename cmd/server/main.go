package main

import (
	"context"
	"time"

	_ "github.com/flexprice/recurring/docs/swagger"
	"github.com/flexprice/recurring/internal/api"
	"github.com/flexprice/recurring/internal/api/cron"
	v1 "github.com/flexprice/recurring/internal/api/v1"
	"github.com/flexprice/recurring/internal/cache"
	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/httpclient"
	"github.com/flexprice/recurring/internal/idempotency"
	"github.com/flexprice/recurring/internal/identity"
	"github.com/flexprice/recurring/internal/integration"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/metrics"
	"github.com/flexprice/recurring/internal/notification"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/flexprice/recurring/internal/pubsub/memory"
	pubsubRouter "github.com/flexprice/recurring/internal/pubsub/router"
	"github.com/flexprice/recurring/internal/pyroscope"
	"github.com/flexprice/recurring/internal/repository"
	"github.com/flexprice/recurring/internal/scheduler"
	"github.com/flexprice/recurring/internal/sentry"
	"github.com/flexprice/recurring/internal/service"
	"github.com/flexprice/recurring/internal/svix"
	"github.com/flexprice/recurring/internal/types"
	"github.com/flexprice/recurring/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Recurring Billing API
// @version 1.0
// @description Subscription and payment lifecycle service
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey AccountAuth
// @in header
// @name X-Account-ID
// @description Account resolved by the upstream gateway

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			pyroscope.NewPyroscopeService,
			metrics.NewMetrics,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			provideDBClient,

			// HTTP Client
			provideHTTPClient,

			// Repositories
			repository.NewSubscriptionRepository,
			repository.NewPaymentRepository,
			repository.NewBillingPlanRepository,
			repository.NewLabelRepository,

			// Providers
			integration.NewFactory,
			identity.NewStaticDirectory,
			idempotency.NewReplayGuard,

			// PubSub
			memory.NewPubSub,
			pubsubRouter.NewRouter,
			svix.NewClient,
			notification.NewNotifier,
			notification.NewHandler,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewBillingPlanService,
			service.NewLabelService,
			service.NewSubscriptionService,
			service.NewPaymentService,
			service.NewCheckoutService,
			service.NewOrgBillingService,
			service.NewReconciliationService,
			service.NewLifecycleService,
		),
	)

	// API and scheduler
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
			scheduler.NewScheduler,
		),
		sentry.Module(),
		fx.Invoke(
			pyroscope.RegisterHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideDBClient(db *postgres.DB, sentryService *sentry.Service, logger *logger.Logger) postgres.IClient {
	return postgres.NewSentryClient(postgres.NewClient(db), sentryService, logger)
}

func provideHTTPClient(cfg *config.Configuration, logger *logger.Logger) httpclient.Client {
	return httpclient.NewDefaultClient(httpclient.ClientConfig{
		Timeout: cfg.Providers.Timeout,
	}, logger)
}

func provideHandlers(
	db *postgres.DB,
	logger *logger.Logger,
	checkoutService service.CheckoutService,
	reconciliationService service.ReconciliationService,
	paymentService service.PaymentService,
	subscriptionService service.SubscriptionService,
	orgBillingService service.OrgBillingService,
	billingPlanService service.BillingPlanService,
	labelService service.LabelService,
	lifecycleService service.LifecycleService,
) api.Handlers {
	return api.Handlers{
		Health:           v1.NewHealthHandler(db, logger),
		Checkout:         v1.NewCheckoutHandler(checkoutService, logger),
		Webhook:          v1.NewWebhookHandler(reconciliationService, logger),
		Payment:          v1.NewPaymentHandler(paymentService, reconciliationService, logger),
		Subscription:     v1.NewSubscriptionHandler(subscriptionService, logger),
		OrgBilling:       v1.NewOrgBillingHandler(orgBillingService, logger),
		BillingPlan:      v1.NewBillingPlanHandler(billingPlanService, logger),
		Label:            v1.NewLabelHandler(labelService, logger),
		CronSubscription: cron.NewSubscriptionHandler(lifecycleService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, directory identity.Directory, m *metrics.Metrics) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, directory, m)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	router *pubsubRouter.Router,
	notificationHandler notification.Handler,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		registerMigrations(lc, db, log)
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, notificationHandler, log)
		if cfg.Scheduler.Enabled {
			startScheduler(lc, sched, log)
		}
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, notificationHandler, log)
	case types.ModeScheduler:
		startMessageRouter(lc, router, notificationHandler, log)
		startScheduler(lc, sched, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

// registerMigrations applies the schema before anything else starts in local mode
func registerMigrations(lc fx.Lifecycle, db *postgres.DB, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Applying database migrations...")
			return db.Migrate(ctx)
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startScheduler(lc fx.Lifecycle, sched *scheduler.Scheduler, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sched.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping lifecycle scheduler")
			return sched.Stop(ctx)
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	notificationHandler notification.Handler,
	logger *logger.Logger,
) {
	// Register handlers before starting the router
	notificationHandler.RegisterHandler(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting message router")
			go func() {
				if err := router.Run(context.Background()); err != nil {
					logger.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping message router")
			return router.Close()
		},
	})
}
