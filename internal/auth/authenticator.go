package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/repository"
)

// Authenticator issues and verifies HS256 session tokens whose subject is a
// user ID.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	users  repository.UserRepo
	now    func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration, users repository.UserRepo) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	a.now = now
	return a
}

// Authenticate resolves token to its user. Any missing, malformed, expired
// or orphaned token yields an error matching apperr.ErrAuthRequired.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.ErrAuthRequired
	}
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAuthRequired, err)
	}
	u, err := a.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", apperr.ErrAuthRequired)
		}
		return nil, apperr.External("loading session user", err)
	}
	return u, nil
}

// Login finds or registers the user with email and returns a fresh session
// token for them. It stands in for the external magic-link flow.
func (a *Authenticator) Login(ctx context.Context, email string) (string, *domain.User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", nil, apperr.Validation("email", "invalid address %q", email)
	}

	u, err := a.users.GetByEmail(ctx, addr.Address)
	if errors.Is(err, repository.ErrNotFound) {
		u = &domain.User{
			ID:        uuid.New().String(),
			Email:     strings.ToLower(addr.Address),
			CreatedAt: a.now().UTC(),
		}
		if err := a.users.Create(ctx, u); err != nil {
			return "", nil, apperr.External("creating user", err)
		}
	} else if err != nil {
		return "", nil, apperr.External("loading user", err)
	}

	token, err := a.IssueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// IssueToken signs a session token for u valid for the configured TTL.
func (a *Authenticator) IssueToken(u *domain.User) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return token, nil
}
