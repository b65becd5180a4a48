package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier compares raw secrets against stored bcrypt hashes.
// bcrypt embeds a per-password salt and an adaptive cost in the hash
// itself, and CompareHashAndPassword is constant-time over the digest.
type PasswordVerifier struct{}

// Verify reports whether raw matches the stored hash. A malformed stored
// hash yields false rather than an error: the repository already rejected
// malformed hashes at startup, so anything reaching this path is treated
// as a failed login.
func (PasswordVerifier) Verify(raw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(raw)) == nil
}

// HashPassword produces a bcrypt hash at the given cost. Used by the
// hashpw tool and by tests building fixture users.
func HashPassword(raw string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
