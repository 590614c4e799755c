package utils

import (
	"context"

	"github.com/HarryWebAI/myerp/appctx"
)

var (
	ContextKeyToken         = appctx.ContextKeyToken
	ContextKeyUserUid       = appctx.ContextKeyUserUid
	ContextKeyUserName      = appctx.ContextKeyUserName
	ContextKeyIsBoss        = appctx.ContextKeyIsBoss
	ContextKeyIsManager     = appctx.ContextKeyIsManager
	ContextKeyIsStorekeeper = appctx.ContextKeyIsStorekeeper
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetUserUidFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserUid)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserName)
}

func GetIsBossFromContext(ctx context.Context) bool {
	v, ok := appctx.GetBool(ctx, ContextKeyIsBoss)
	return ok && v
}

func GetIsManagerFromContext(ctx context.Context) bool {
	v, ok := appctx.GetBool(ctx, ContextKeyIsManager)
	return ok && v
}

func GetIsStorekeeperFromContext(ctx context.Context) bool {
	v, ok := appctx.GetBool(ctx, ContextKeyIsStorekeeper)
	return ok && v
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetUserUidInContext(ctx context.Context, uid string) context.Context {
	return appctx.Set(ctx, ContextKeyUserUid, uid)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.Set(ctx, ContextKeyUserName, userName)
}

func SetIsBossInContext(ctx context.Context, isBoss bool) context.Context {
	return appctx.Set(ctx, ContextKeyIsBoss, isBoss)
}

func SetIsManagerInContext(ctx context.Context, isManager bool) context.Context {
	return appctx.Set(ctx, ContextKeyIsManager, isManager)
}

func SetIsStorekeeperInContext(ctx context.Context, isStorekeeper bool) context.Context {
	return appctx.Set(ctx, ContextKeyIsStorekeeper, isStorekeeper)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
