package user

import "context"

type contextKey string

// requesterIDContextKey holds the authenticated caller's user ID.
const requesterIDContextKey contextKey = "requester_id"

// ContextWithRequesterID attaches the authenticated caller's user ID to
// the context. Set by the auth middleware.
func ContextWithRequesterID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, requesterIDContextKey, id)
}

// RequesterIDFromContext extracts the authenticated caller's user ID.
func RequesterIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(requesterIDContextKey).(int64)
	return id, ok
}
