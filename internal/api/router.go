package api

import (
	"github.com/flexprice/recurring/internal/api/cron"
	v1 "github.com/flexprice/recurring/internal/api/v1"
	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/identity"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/metrics"
	"github.com/flexprice/recurring/internal/rest/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Checkout     *v1.CheckoutHandler
	Webhook      *v1.WebhookHandler
	Payment      *v1.PaymentHandler
	Subscription *v1.SubscriptionHandler
	OrgBilling   *v1.OrgBillingHandler
	BillingPlan  *v1.BillingPlanHandler
	Label        *v1.LabelHandler

	// Cron jobs
	CronSubscription *cron.SubscriptionHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, directory identity.Directory, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.PyroscopeMiddleware(cfg),
		m.GinMiddleware(),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1Public := router.Group("/v1")

	// Providers authenticate with signatures, not accounts
	v1Public.POST("/webhooks/:provider", handlers.Webhook.HandleWebhook)

	v1Private := router.Group("/v1")
	v1Private.Use(middleware.AccountMiddleware(directory, logger))
	v1Private.Use(middleware.RequireAccount)
	{
		v1Private.POST("/checkout", handlers.Checkout.Checkout)
		v1Private.GET("/payments/:id", handlers.Payment.GetPayment)

		subscriptions := v1Private.Group("/subscriptions/:account_id")
		subscriptions.Use(middleware.RequireSelfOrOperator("account_id"))
		{
			subscriptions.GET("", handlers.Subscription.GetSubscription)
			subscriptions.POST("/trial", handlers.Subscription.EnsureTrial)
			subscriptions.POST("/cancel", handlers.Subscription.CancelSubscription)
			subscriptions.GET("/history", handlers.Subscription.ListHistory)
		}
	}

	operator := router.Group("/v1")
	operator.Use(middleware.AccountMiddleware(directory, logger))
	operator.Use(middleware.RequireOperator)
	{
		operator.GET("/payments", handlers.Payment.ListPayments)

		manual := operator.Group("/manual")
		{
			manual.POST("/approve", handlers.Payment.ApproveManual)
			manual.POST("/fail", handlers.Payment.FailManual)
		}

		orgInvoices := operator.Group("/org-invoices")
		{
			orgInvoices.POST("", handlers.OrgBilling.CreateOrgInvoice)
			orgInvoices.POST("/renew", handlers.OrgBilling.RenewOrgInvoice)
			orgInvoices.POST("/activate", handlers.OrgBilling.ActivateBulk)
		}

		billingPlans := operator.Group("/billing-plans")
		{
			billingPlans.POST("", handlers.BillingPlan.CreateBillingPlan)
			billingPlans.GET("", handlers.BillingPlan.ListBillingPlans)
			billingPlans.GET("/:id", handlers.BillingPlan.GetBillingPlan)
			billingPlans.POST("/:id/activate", handlers.BillingPlan.ActivateBillingPlan)
			billingPlans.POST("/:id/deactivate", handlers.BillingPlan.DeactivateBillingPlan)
		}

		labels := operator.Group("/labels")
		{
			labels.POST("", handlers.Label.CreateLabel)
			labels.GET("", handlers.Label.ListLabels)
			labels.GET("/:id", handlers.Label.GetLabel)
			labels.POST("/:id/members", handlers.Label.AddMembers)
			labels.GET("/:id/members", handlers.Label.ListMembers)
			labels.DELETE("/:id/members/:account_id", handlers.Label.RemoveMember)
		}

		// Cron routes
		cronGroup := operator.Group("/cron")
		{
			subscriptionGroup := cronGroup.Group("/subscriptions")
			{
				subscriptionGroup.POST("/trial-expiry", handlers.CronSubscription.NotifyExpiringTrials)
				subscriptionGroup.POST("/enterprise-expiry", handlers.CronSubscription.NotifyExpiringEnterprise)
				subscriptionGroup.POST("/auto-expire", handlers.CronSubscription.SweepExpired)
			}
		}
	}

	return router
}
