package postgres

import (
	"context"

	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/logger"
	"go.uber.org/fx"
)

// IClient defines the interface for postgres client operations
type IClient interface {
	// WithTx wraps the given function in a transaction. Nested calls reuse the
	// outer transaction through savepoints.
	WithTx(ctx context.Context, fn func(context.Context) error) error

	// InTx reports whether ctx already carries a transaction
	InTx(ctx context.Context) bool
}

// Module provides an fx.Option to integrate the sqlx database with the application
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			NewClient,
		),
	)
}

// Client exposes DB transaction management behind IClient
type Client struct {
	db *DB
}

// NewClient creates the transaction client used by the services
func NewClient(db *DB) IClient {
	return &Client{db: db}
}

func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.db.WithTx(ctx, fn)
}

func (c *Client) InTx(ctx context.Context) bool {
	_, ok := GetTx(ctx)
	return ok
}

// registerLifecycle closes the pool when the application stops
func registerLifecycle(lc fx.Lifecycle, db *DB, log *logger.Logger, cfg *config.Configuration) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Infow("closing postgres connection", "host", cfg.Postgres.Host)
			db.Close()
			return nil
		},
	})
}

// Lifecycle is the fx.Invoke option that hooks the pool shutdown
var Lifecycle = fx.Invoke(registerLifecycle)
