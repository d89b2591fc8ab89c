package integration

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_RegistersEveryProvider(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Providers.Timeout = time.Second
	cfg.Providers.Xendit.SecretKey = "xnd_key"

	f := NewFactory(cfg, logger.NewNoopLogger())
	assert.ElementsMatch(t, []types.PaymentProvider{
		types.PaymentProviderXendit,
		types.PaymentProviderStripe,
		types.PaymentProviderManual,
	}, f.Providers())

	xendit, err := f.GetProvider(types.PaymentProviderXendit)
	require.NoError(t, err)
	assert.True(t, xendit.IsConfigured())

	// registered without credentials
	stripe, err := f.GetProvider(types.PaymentProviderStripe)
	require.NoError(t, err)
	assert.False(t, stripe.IsConfigured())
	_, err = stripe.CreateCharge(context.Background(), &base.ChargeRequest{PaymentID: "pay_1"})
	assert.True(t, ierr.IsConfiguration(err))

	manual, err := f.GetProvider(types.PaymentProviderManual)
	require.NoError(t, err)
	assert.True(t, manual.IsConfigured())
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := NewFactoryWithProviders(logger.NewNoopLogger())
	_, err := f.GetProvider(types.PaymentProviderStripe)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
