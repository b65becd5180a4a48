package auth

import (
	"context"
	"strings"

	"secure-login/internal/observability"
)

// Service orchestrates credential verification, token issuance and the
// revocation store. A token it issued is usable exactly while it is both
// structurally valid and still present in the store.
type Service struct {
	repo     *Repository
	verifier PasswordVerifier
	codec    *TokenCodec
	store    TokenStore
	logger   *observability.Logger
}

func NewService(repo *Repository, codec *TokenCodec, store TokenStore, logger *observability.Logger) *Service {
	return &Service{
		repo:   repo,
		codec:  codec,
		store:  store,
		logger: logger,
	}
}

// Login verifies the credentials and returns a freshly issued token.
// ErrUserNotFound and ErrInvalidCredentials are logged distinctly but
// must be presented identically to the caller; only the audit log may
// know which check failed.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (string, error) {
	username = strings.TrimSpace(username)
	s.logger.Debug("login_attempt", map[string]any{"username": username})

	user, ok := s.repo.FindByUsername(username)
	if !ok {
		s.logger.Warn("login_failed_user_not_found", map[string]any{"username": username})
		return "", ErrUserNotFound
	}

	if !s.verifier.Verify(rawPassword, user.PasswordHash) {
		s.logger.Warn("login_failed_bad_password", map[string]any{"username": username})
		return "", ErrInvalidCredentials
	}

	token, err := s.codec.Issue(username)
	if err != nil {
		return "", err
	}
	s.store.Add(token)

	s.logger.Info("login_succeeded", map[string]any{"username": username})
	return token, nil
}

// ValidateToken returns the username bound to the token, failing closed
// with ErrInvalidToken on an empty token, an undecodable subject, a token
// absent from the store, or a failed codec check. A token the store holds
// but the codec rejects has expired in place; it is removed here so the
// store does not accumulate dead entries.
func (s *Service) ValidateToken(token string) (string, error) {
	if token == "" {
		s.logger.Warn("validate_empty_token", nil)
		return "", ErrInvalidToken
	}

	username, ok := s.codec.ExtractSubject(token)
	if !ok {
		s.logger.Warn("validate_undecodable_token", nil)
		return "", ErrInvalidToken
	}

	if !s.store.Contains(token) {
		// Revoked or never issued; the two are indistinguishable on purpose,
		// and a codec-valid token is never resurrected here.
		s.logger.Warn("validate_token_not_active", map[string]any{"username": username})
		return "", ErrInvalidToken
	}

	if !s.codec.Validate(token, username) {
		s.store.Remove(token)
		s.logger.Warn("validate_token_expired", map[string]any{"username": username})
		return "", ErrInvalidToken
	}

	s.logger.Debug("validate_token_ok", map[string]any{"username": username})
	return username, nil
}

// Logout revokes the token. The subject is extracted best-effort for the
// audit log; a malformed token that is somehow present in the store is
// still removed.
func (s *Service) Logout(token string) error {
	if token == "" {
		s.logger.Warn("logout_empty_token", nil)
		return ErrInvalidToken
	}

	if !s.store.Remove(token) {
		s.logger.Warn("logout_token_not_active", nil)
		return ErrInvalidToken
	}

	username, ok := s.codec.ExtractSubject(token)
	if !ok {
		username = "unknown"
	}
	s.logger.Info("logout_succeeded", map[string]any{"username": username})
	return nil
}

// TokenCount reports how many tokens are currently honored.
func (s *Service) TokenCount() int {
	return s.store.Count()
}
