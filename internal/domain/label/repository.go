package label

import "context"

type Repository interface {
	Create(ctx context.Context, label *EnterpriseLabel) error
	Get(ctx context.Context, id string) (*EnterpriseLabel, error)
	GetByCode(ctx context.Context, code string) (*EnterpriseLabel, error)
	List(ctx context.Context) ([]*EnterpriseLabel, error)

	// AddMembers is idempotent, existing memberships are left untouched
	AddMembers(ctx context.Context, labelID string, accountIDs []string) error
	RemoveMember(ctx context.Context, labelID string, accountID string) error
	ListMembers(ctx context.Context, labelID string) ([]*Member, error)
}
