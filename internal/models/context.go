package models

import "context"

type userContextKey struct{}

// WithUserId attaches the authenticated user id to a context.
func WithUserId(ctx context.Context, userId string) context.Context {
	return context.WithValue(ctx, userContextKey{}, userId)
}

// GetUserId retrieves the authenticated user id from context, or "" if absent.
func GetUserId(ctx context.Context) (string, bool) {
	userId, ok := ctx.Value(userContextKey{}).(string)
	return userId, ok && userId != ""
}
