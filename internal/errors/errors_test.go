package errors

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", NewError("missing plan").Mark(ErrValidation), http.StatusBadRequest},
		{"not found", NewError("payment not found").Mark(ErrNotFound), http.StatusNotFound},
		{"configuration", NewError("no secret key").Mark(ErrConfiguration), http.StatusServiceUnavailable},
		{"provider", NewError("gateway timeout").Mark(ErrProvider), http.StatusBadGateway},
		{"reconcile", NewError("not awaiting approval").Mark(ErrReconcile), http.StatusConflict},
		{"wrapped", errors.Wrap(NewError("x").Mark(ErrReconcile), "approve"), http.StatusConflict},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestBuilderKeepsHintsAndDetails(t *testing.T) {
	err := NewErrorf("plan %s not found", "RECURRING_MONTHLY").
		WithHint("No active billing plan").
		WithReportableDetails(map[string]any{"currency": "USD"}).
		Mark(ErrNotFound)

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, []string{"No active billing plan"}, errors.GetAllHints(err))
	assert.NotEmpty(t, errors.GetAllSafeDetails(err))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewError("5xx").Mark(ErrProvider)))
	assert.True(t, IsRetryable(NewError("dial").Mark(ErrHTTPClient)))
	assert.False(t, IsRetryable(NewError("no key").Mark(ErrConfiguration)))
	assert.False(t, IsRetryable(NewError("bad").Mark(ErrValidation)))
}
