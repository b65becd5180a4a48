package auth

// User is a credential record loaded once at startup. PasswordHash is a
// self-describing bcrypt hash with embedded salt and cost, never a plain
// or fast-hashed secret.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
}
