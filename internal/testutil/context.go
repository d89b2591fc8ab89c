package testutil

import (
	"context"

	"github.com/flexprice/recurring/internal/types"
)

// DefaultOperatorID is the account SetupContext acts as
const DefaultOperatorID = "acc_operator"

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetAccountID(ctx, DefaultOperatorID)
	ctx = types.SetRole(ctx, types.RoleOperator)
	ctx = types.SetRequestID(ctx, types.GenerateUUID())
	return ctx
}
