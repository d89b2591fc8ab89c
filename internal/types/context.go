package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxAccountID     ContextKey = "ctx_account_id"
	CtxRole          ContextKey = "ctx_role"
	CtxDBTransaction ContextKey = "ctx_db_transaction"

	// DefaultSystemActor is recorded as the actor of mutations that no account triggered
	// (webhooks, scheduled sweeps).
	DefaultSystemActor = "system"
)

const (
	HeaderRequestID = "X-Request-ID"
	// HeaderAccountID carries the account an upstream gateway authenticated
	HeaderAccountID = "X-Account-ID"
)

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetAccountID returns the calling account, if the request was authenticated
func GetAccountID(ctx context.Context) string {
	if accountID, ok := ctx.Value(CtxAccountID).(string); ok {
		return accountID
	}
	return ""
}

// GetActor returns the calling account or the system actor
func GetActor(ctx context.Context) string {
	if accountID := GetAccountID(ctx); accountID != "" {
		return accountID
	}
	return DefaultSystemActor
}

func GetRole(ctx context.Context) Role {
	if role, ok := ctx.Value(CtxRole).(Role); ok {
		return role
	}
	return ""
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

func SetAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, CtxAccountID, accountID)
}

func SetRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, CtxRole, role)
}
