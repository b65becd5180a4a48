package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCodec issues and checks HS256-signed bearer tokens. The TTL is
// fixed at construction; callers never choose their own expiry.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing key must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid token ttl %s", ttl)
	}
	return &TokenCodec{secret: secret, ttl: ttl}, nil
}

// Issue signs a token binding the subject to now+TTL. The jti claim makes
// tokens issued to the same subject in the same second distinct strings,
// so they revoke independently.
func (c *TokenCodec) Issue(subject string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		ID:        uuid.NewString(),
	}

	encoded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return encoded, nil
}

// ExtractSubject decodes the embedded subject without verifying the
// signature or expiry. Audit logging wants the claimed subject of
// otherwise-invalid tokens; nothing security-relevant may depend on it.
func (c *TokenCodec) ExtractSubject(token string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", false
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", false
	}
	return subject, true
}

// Validate reports whether the token carries a valid signature, is
// unexpired by local process time, and names expectedSubject. Signature
// and expiry failures are deliberately indistinguishable to the caller.
func (c *TokenCodec) Validate(token, expectedSubject string) bool {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return false
	}
	return claims.Subject == expectedSubject
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}
