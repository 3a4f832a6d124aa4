package assistant

import "context"

// The resolved internal user id travels to the lookup tool through an
// explicit typed context value rather than any request-scoped global. An
// absent value means the caller's identity could not be mapped to a user.
type userIdKey struct{}

func withUserId(ctx context.Context, userId string) context.Context {
	return context.WithValue(ctx, userIdKey{}, userId)
}

func userIdFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIdKey{}).(string)
	return id, ok && id != ""
}
