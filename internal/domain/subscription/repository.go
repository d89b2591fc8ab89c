package subscription

import (
	"context"

	"github.com/flexprice/recurring/internal/types"
)

// Repository defines the interface for subscription persistence
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	GetByAccountID(ctx context.Context, accountID string) (*Subscription, error)
	// GetByAccountIDForUpdate locks the row for the rest of the surrounding transaction
	GetByAccountIDForUpdate(ctx context.Context, accountID string) (*Subscription, error)
	GetForUpdate(ctx context.Context, id string) (*Subscription, error)
	GetByExternalAgreementID(ctx context.Context, agreementID string) (*Subscription, error)
	// Update writes sub if its version is unchanged and bumps the version
	Update(ctx context.Context, sub *Subscription) error
	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)

	CreateHistory(ctx context.Context, history *History) error
	ListHistory(ctx context.Context, subscriptionID string) ([]*History, error)
}
