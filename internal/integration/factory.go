package integration

import (
	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/httpclient"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/integration/manual"
	"github.com/flexprice/recurring/internal/integration/stripe"
	"github.com/flexprice/recurring/internal/integration/xendit"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
)

// Factory builds provider adapters from explicit configuration and hands them out by provider
type Factory struct {
	config   *config.Configuration
	logger   *logger.Logger
	registry *base.Registry
}

// NewFactory creates the adapters for every supported provider. Adapters without
// credentials are still registered so callers get a configuration error, not a missing provider.
func NewFactory(cfg *config.Configuration, logger *logger.Logger) *Factory {
	httpClient := httpclient.NewDefaultClient(httpclient.ClientConfig{
		Timeout:           cfg.Providers.Timeout,
		RetryMax:          cfg.Providers.MaxRetries,
		RequestsPerSecond: cfg.Providers.RequestsPerSecond,
	}, logger)

	registry := base.NewRegistry(
		xendit.NewClient(cfg.Providers.Xendit, httpClient, logger),
		stripe.NewClient(cfg.Providers.Stripe, logger),
		manual.NewClient(logger),
	)

	for _, p := range registry.Providers() {
		provider, _ := registry.Get(p)
		if !provider.IsConfigured() {
			logger.Warnw("payment provider registered without credentials", "provider", p)
		}
	}

	return &Factory{
		config:   cfg,
		logger:   logger,
		registry: registry,
	}
}

// NewFactoryWithProviders builds a factory around pre-built adapters, used by tests and fixtures
func NewFactoryWithProviders(logger *logger.Logger, providers ...base.Provider) *Factory {
	return &Factory{
		logger:   logger,
		registry: base.NewRegistry(providers...),
	}
}

// GetProvider returns the adapter registered for provider
func (f *Factory) GetProvider(provider types.PaymentProvider) (base.Provider, error) {
	return f.registry.Get(provider)
}

// Providers lists the registered providers
func (f *Factory) Providers() []types.PaymentProvider {
	return f.registry.Providers()
}
