package auth

import (
	"context"

	"kboard/apperr"
	"kboard/models"
)

// principalContextKey is the context key for the authenticated user.
type principalContextKey struct{}

// WithPrincipal attaches the authenticated user to ctx. Only the
// authentication middleware calls it.
func WithPrincipal(ctx context.Context, user models.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalContextKey{}, user)
}

// Current returns the principal attached to ctx, or a NotAuthenticated error.
func Current(ctx context.Context) (models.User, error) {
	if ctx == nil {
		return models.User{}, apperr.New(apperr.KindNotAuthenticated, "User is not logged.")
	}
	user, ok := ctx.Value(principalContextKey{}).(models.User)
	if !ok {
		return models.User{}, apperr.New(apperr.KindNotAuthenticated, "User is not logged.")
	}
	return user, nil
}
