package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxActorType     ContextKey = "ctx_actor_type"
	CtxDBTransaction ContextKey = "ctx_db_transaction"

	// DefaultUserID is used by background jobs and scripts
	DefaultUserID = "00000000-0000-0000-0000-000000000000"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetActorType returns the role of the authenticated caller, defaulting to user
func GetActorType(ctx context.Context) ActorType {
	if actorType, ok := ctx.Value(CtxActorType).(ActorType); ok {
		return actorType
	}
	return ActorTypeUser
}

// GetActor builds the actor performing the current request
func GetActor(ctx context.Context) Actor {
	return Actor{
		ID:   GetUserID(ctx),
		Type: GetActorType(ctx),
	}
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetActorType sets the caller role in the context
func SetActorType(ctx context.Context, actorType ActorType) context.Context {
	return context.WithValue(ctx, CtxActorType, actorType)
}

// SetRequestID sets the request ID in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}
