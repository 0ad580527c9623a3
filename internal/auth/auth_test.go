package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/repository"
	"github.com/alexanderramin/canteiro/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	users := repository.NewSQLiteUserRepo(testutil.NewTestDB(t))
	return NewAuthenticator("secret", time.Hour, users)
}

func TestRequireUser(t *testing.T) {
	_, err := RequireUser(context.Background())
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)

	u := &domain.User{ID: "u1", Email: "a@b.c"}
	got, err := RequireUser(WithUser(context.Background(), u))
	require.NoError(t, err)
	assert.Same(t, u, got)

	_, ok := UserFromContext(WithUser(context.Background(), nil))
	assert.False(t, ok)
}

func TestAuthenticator_LoginThenAuthenticate(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	token, u, err := a.Login(ctx, "Engenheira <Eng@Obra.com.br>")
	require.NoError(t, err)
	assert.Equal(t, "eng@obra.com.br", u.Email)

	got, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, again, err := a.Login(ctx, "eng@obra.com.br")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID, "login reuses the existing user")
}

func TestAuthenticator_Login_InvalidEmail(t *testing.T) {
	a := newTestAuthenticator(t)

	_, _, err := a.Login(context.Background(), "not-an-email")
	assert.True(t, apperr.IsValidation(err))
}

func TestAuthenticator_Authenticate_Failures(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()
	now := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	a.WithClock(func() time.Time { return now })

	token, _, err := a.Login(ctx, "mestre@obra.com")
	require.NoError(t, err)

	t.Run("blank", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "")
		assert.True(t, apperr.IsAuthRequired(err))
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "abc.def.ghi")
		assert.True(t, apperr.IsAuthRequired(err))
	})
	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthenticator("other", time.Hour, nil)
		forged, err := other.IssueToken(&domain.User{ID: "u1"})
		require.NoError(t, err)
		_, err = a.Authenticate(ctx, forged)
		assert.True(t, apperr.IsAuthRequired(err))
	})
	t.Run("unknown user", func(t *testing.T) {
		orphan, err := a.IssueToken(&domain.User{ID: "ghost"})
		require.NoError(t, err)
		_, err = a.Authenticate(ctx, orphan)
		assert.True(t, apperr.IsAuthRequired(err))
	})
	t.Run("expired", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		_, err := a.Authenticate(ctx, token)
		assert.True(t, apperr.IsAuthRequired(err))
	})
}

func TestSessionFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")

	token, err := LoadSession(path)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, SaveSession(path, "tok"))
	token, err = LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	require.NoError(t, ClearSession(path))
	require.NoError(t, ClearSession(path))
	token, err = LoadSession(path)
	require.NoError(t, err)
	assert.Empty(t, token)
}
