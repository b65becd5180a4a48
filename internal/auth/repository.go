package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Repository is a read-only, in-memory credential store. The user list is
// loaded once from a JSON file and never mutated afterwards, so lookups
// need no locking.
type Repository struct {
	users map[string]User
}

// LoadRepository reads a JSON array of users and validates every stored
// hash. A hash that does not parse as bcrypt, or whose cost is below
// minCost, is a configuration error and fails the load; per-request
// verification never has to deal with a malformed store.
func LoadRepository(path string, minCost int) (*Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read user data file: %w", err)
	}

	var list []User
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse user data file %s: %w", path, err)
	}

	users := make(map[string]User, len(list))
	for _, user := range list {
		username := strings.TrimSpace(user.Username)
		if username == "" {
			return nil, fmt.Errorf("user data file %s: entry with empty username", path)
		}
		if _, exists := users[username]; exists {
			return nil, fmt.Errorf("user data file %s: duplicate username %q", path, username)
		}

		cost, err := bcrypt.Cost([]byte(user.PasswordHash))
		if err != nil {
			return nil, fmt.Errorf("user %q: stored hash is not bcrypt: %w", username, err)
		}
		if cost < minCost {
			return nil, fmt.Errorf("user %q: bcrypt cost %d below minimum %d", username, cost, minCost)
		}

		user.Username = username
		users[username] = user
	}

	return &Repository{users: users}, nil
}

// NewRepository builds a repository from an already-validated user list.
// Used by tests and by callers that load users some other way.
func NewRepository(list []User) *Repository {
	users := make(map[string]User, len(list))
	for _, user := range list {
		users[user.Username] = user
	}
	return &Repository{users: users}
}

func (r *Repository) FindByUsername(username string) (User, bool) {
	user, ok := r.users[username]
	return user, ok
}

func (r *Repository) Len() int {
	return len(r.users)
}
