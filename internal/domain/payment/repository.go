package payment

import (
	"context"
	"time"

	"github.com/flexprice/recurring/internal/types"
)

// Repository defines the interface for payment persistence
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	// GetForUpdate locks the row for the rest of the surrounding transaction
	GetForUpdate(ctx context.Context, id string) (*Payment, error)
	GetByExternalID(ctx context.Context, provider types.PaymentProvider, externalID string) (*Payment, error)
	GetByExternalIDForUpdate(ctx context.Context, provider types.PaymentProvider, externalID string) (*Payment, error)
	// Update writes payment if its version is unchanged and bumps the version
	Update(ctx context.Context, payment *Payment) error
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	// CountFailedSince counts FAILED payments of a subscription whose failed_at is at or after since
	CountFailedSince(ctx context.Context, subscriptionID string, since time.Time) (int, error)
}
