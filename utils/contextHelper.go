package utils

import (
	"context"

	"github.com/mmdatafocus/tpq_backend/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

var (
	ContextKeyToken         = appctx.ContextKeyToken
	ContextKeyAdminId       = appctx.ContextKeyAdminId
	ContextKeyAdminName     = appctx.ContextKeyAdminName
	ContextKeyUsername      = appctx.ContextKeyUsername
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId

	ContextKeySkipTenantScope = appctx.ContextKeySkipTenantScope
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetAdminIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyAdminId)
}

func GetAdminNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyAdminName)
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsername)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetAdminIdInContext(ctx context.Context, adminId string) context.Context {
	return appctx.Set(ctx, ContextKeyAdminId, adminId)
}

func SetAdminNameInContext(ctx context.Context, adminName string) context.Context {
	return appctx.Set(ctx, ContextKeyAdminName, adminName)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetSkipTenantScopeInContext(ctx context.Context, skip bool) context.Context {
	return appctx.Set(ctx, ContextKeySkipTenantScope, skip)
}
