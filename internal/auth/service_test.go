package auth

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"secure-login/internal/observability"
)

type fixture struct {
	service *Service
	store   *MemoryTokenStore
	codec   *TokenCodec
}

func newFixture(t *testing.T, usernames ...string) fixture {
	t.Helper()

	users := make([]User, 0, len(usernames))
	for _, username := range usernames {
		hash, err := HashPassword("password-for-"+username, bcrypt.MinCost)
		require.NoError(t, err)
		users = append(users, User{Username: username, PasswordHash: hash})
	}

	codec := newTestCodec(t)
	store := NewMemoryTokenStore()
	logger := observability.NewLoggerTo(io.Discard, observability.LevelError)

	return fixture{
		service: NewService(NewRepository(users), codec, store, logger),
		store:   store,
		codec:   codec,
	}
}

func TestService_LoginValidateRoundtrip(t *testing.T) {
	fx := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	for _, username := range []string{"alice", "bob", "carol"} {
		token, err := fx.service.Login(ctx, username, "password-for-"+username)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		got, err := fx.service.ValidateToken(token)
		require.NoError(t, err)
		require.Equal(t, username, got)
	}
	require.Equal(t, 3, fx.service.TokenCount())
}

func TestService_LoginFailures(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	_, err := fx.service.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = fx.service.Login(ctx, "mallory", "whatever")
	require.ErrorIs(t, err, ErrUserNotFound)

	// Neither failure may leave anything in the store.
	require.Equal(t, 0, fx.service.TokenCount())
}

func TestService_LogoutRevokesUnexpiredToken(t *testing.T) {
	fx := newFixture(t, "alice")
	token, err := fx.service.Login(context.Background(), "alice", "password-for-alice")
	require.NoError(t, err)

	require.NoError(t, fx.service.Logout(token))

	// Still structurally valid, but revocation wins.
	require.True(t, fx.codec.Validate(token, "alice"))
	_, err = fx.service.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.False(t, fx.store.Contains(token))
}

func TestService_Logout_InvalidTokens(t *testing.T) {
	fx := newFixture(t, "alice")

	require.ErrorIs(t, fx.service.Logout(""), ErrInvalidToken)
	require.ErrorIs(t, fx.service.Logout("never-issued"), ErrInvalidToken)

	token, err := fx.service.Login(context.Background(), "alice", "password-for-alice")
	require.NoError(t, err)
	require.NoError(t, fx.service.Logout(token))

	// A second logout of the same token fails: it is already revoked.
	require.ErrorIs(t, fx.service.Logout(token), ErrInvalidToken)
}

func TestService_Logout_MalformedTokenStillRevoked(t *testing.T) {
	fx := newFixture(t, "alice")

	// A store entry whose subject cannot be extracted must still be
	// removable; the audit log falls back to "unknown".
	fx.store.Add("opaque-garbage")
	require.NoError(t, fx.service.Logout("opaque-garbage"))
	require.False(t, fx.store.Contains("opaque-garbage"))
}

func TestService_ValidateToken_FailsClosed(t *testing.T) {
	fx := newFixture(t, "alice")

	_, err := fx.service.ValidateToken("")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = fx.service.ValidateToken("structurally-unreadable")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Codec-valid but never added to the store: rejected, never resurrected.
	orphan, err := fx.codec.Issue("alice")
	require.NoError(t, err)
	_, err = fx.service.ValidateToken(orphan)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.False(t, fx.store.Contains(orphan))
}

func TestService_ValidateToken_ExpiredTokenCleanedFromStore(t *testing.T) {
	fx := newFixture(t, "alice")

	expired := signToken(t, testSigningKey, "alice", time.Now().UTC().Add(-time.Hour))
	fx.store.Add(expired)
	require.Equal(t, 1, fx.service.TokenCount())

	_, err := fx.service.ValidateToken(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Cleanup side effect: the dead entry is gone.
	require.False(t, fx.store.Contains(expired))
	require.Equal(t, 0, fx.service.TokenCount())
}

func TestService_ConcurrentLoginLogoutKeepsCountExact(t *testing.T) {
	const workers = 8
	const rounds = 20

	usernames := make([]string, workers)
	for i := range usernames {
		usernames[i] = fmt.Sprintf("user-%d", i)
	}
	fx := newFixture(t, usernames...)
	ctx := context.Background()

	var wg sync.WaitGroup
	kept := make([][]string, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			username := usernames[w]
			for i := 0; i < rounds; i++ {
				token, err := fx.service.Login(ctx, username, "password-for-"+username)
				if err != nil {
					t.Error(err)
					return
				}
				if i%2 == 0 {
					if err := fx.service.Logout(token); err != nil {
						t.Error(err)
						return
					}
				} else {
					kept[w] = append(kept[w], token)
				}
			}
		}(w)
	}
	wg.Wait()

	issued := workers * rounds
	revoked := workers * rounds / 2
	require.Equal(t, issued-revoked, fx.service.TokenCount())

	for w := range kept {
		for _, token := range kept[w] {
			got, err := fx.service.ValidateToken(token)
			require.NoError(t, err)
			require.Equal(t, usernames[w], got)
		}
	}
}
