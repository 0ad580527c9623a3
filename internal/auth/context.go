// Package auth resolves session tokens to users and carries the current
// user through a context.
package auth

import (
	"context"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/domain"
)

type userKey struct{}

// WithUser returns a context carrying u as the authenticated user.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(*domain.User)
	return u, ok && u != nil
}

// RequireUser returns the authenticated user or apperr.ErrAuthRequired.
func RequireUser(ctx context.Context) (*domain.User, error) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return nil, apperr.ErrAuthRequired
	}
	return u, nil
}
