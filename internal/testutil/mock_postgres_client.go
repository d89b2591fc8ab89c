package testutil

import (
	"context"

	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/flexprice/recurring/internal/types"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

// MockPostgresClient runs transactional functions inline. Nothing is rolled back.
type MockPostgresClient struct {
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{
		logger: logger,
	}
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if c.InTx(ctx) {
		return fn(ctx)
	}
	return fn(context.WithValue(ctx, types.CtxDBTransaction, true))
}

func (c *MockPostgresClient) InTx(ctx context.Context) bool {
	inTx, _ := ctx.Value(types.CtxDBTransaction).(bool)
	return inTx
}
