package identity

import (
	"context"
	"strings"

	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

// Directory answers role questions about accounts. Authentication itself lives elsewhere.
type Directory interface {
	// GetAccountRole returns the role of accountID. Unknown accounts are members.
	GetAccountRole(ctx context.Context, accountID string) (types.Role, error)
	// ListOperators returns the accounts that operate the billing back office
	ListOperators(ctx context.Context) ([]string, error)
}

type staticDirectory struct {
	roles     map[string]types.Role
	operators []string
}

// NewStaticDirectory builds a directory from the identity section of the configuration
func NewStaticDirectory(cfg *config.Configuration) (Directory, error) {
	d := &staticDirectory{roles: make(map[string]types.Role)}

	for accountID, raw := range cfg.Identity.Roles {
		role := types.Role(strings.ToUpper(strings.TrimSpace(raw)))
		if !lo.Contains([]types.Role{types.RoleMember, types.RoleOperator, types.RoleGuest}, role) {
			return nil, ierr.NewErrorf("unknown role %q for account %s", raw, accountID).
				WithHint("Identity roles must be MEMBER, OPERATOR or GUEST").
				Mark(ierr.ErrConfiguration)
		}
		d.roles[accountID] = role
	}
	for _, accountID := range cfg.Identity.Operators {
		d.roles[accountID] = types.RoleOperator
	}

	for accountID, role := range d.roles {
		if role == types.RoleOperator {
			d.operators = append(d.operators, accountID)
		}
	}
	return d, nil
}

func (d *staticDirectory) GetAccountRole(ctx context.Context, accountID string) (types.Role, error) {
	if accountID == "" {
		return "", ierr.NewError("account id is required").
			WithHint("Account id is required").
			Mark(ierr.ErrValidation)
	}
	if role, ok := d.roles[accountID]; ok {
		return role, nil
	}
	return types.RoleMember, nil
}

func (d *staticDirectory) ListOperators(ctx context.Context) ([]string, error) {
	return append([]string(nil), d.operators...), nil
}
