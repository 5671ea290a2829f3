package testutil

import (
	"context"

	"github.com/flexprice/playerseats/internal/types"
)

// SetupContext returns a context carrying a request id and the default user acting as a member
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	ctx = types.SetActorType(ctx, types.ActorTypeUser)
	ctx = types.SetRequestID(ctx, types.GenerateUUID())
	return ctx
}

// SetupAdminContext is SetupContext for an administrator
func SetupAdminContext() context.Context {
	return types.SetActorType(SetupContext(), types.ActorTypeAdmin)
}
