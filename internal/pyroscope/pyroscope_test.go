package pyroscope

import (
	"context"
	"testing"

	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledServiceRunsWrappedFunctions(t *testing.T) {
	svc := NewPyroscopeService(config.GetDefaultConfig(), logger.NewNoopLogger())
	require.False(t, svc.IsEnabled())
	require.NoError(t, svc.Start())

	called := false
	svc.TagWrapper(context.Background(), map[string]string{"job": "auto_expire"}, func(context.Context) {
		called = true
	})
	assert.True(t, called)
	assert.NoError(t, svc.Stop())
}

func TestProfileTypes(t *testing.T) {
	cfg := config.GetDefaultConfig()
	svc := NewPyroscopeService(cfg, logger.NewNoopLogger())
	assert.Len(t, svc.getProfileTypes(), 4)

	cfg.Pyroscope.ProfileTypes = []string{"CPU", "goroutines", "bogus"}
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileGoroutines}, svc.getProfileTypes())
}
