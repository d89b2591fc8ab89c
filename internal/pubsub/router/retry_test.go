package router

import (
	"context"
	"testing"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/httpclient"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	log := logger.NewNoopLogger()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"service unavailable", httpclient.NewError(503, nil), true},
		{"too many requests", httpclient.NewError(429, nil), true},
		{"bad request", httpclient.NewError(400, nil), false},
		{"validation", ierr.NewError("bad").Mark(ierr.ErrValidation), false},
		{"configuration", ierr.NewError("missing").Mark(ierr.ErrConfiguration), false},
		{"deadline", context.DeadlineExceeded, true},
		{"unknown", ierr.NewError("boom").Mark(ierr.ErrSystem), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRetry(log, tt.err))
		})
	}
}
