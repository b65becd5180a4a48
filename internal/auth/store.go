package auth

import (
	"sync"
	"sync/atomic"
)

// TokenStore is the authoritative record of which issued tokens are still
// honored. Implementations must be safe for unbounded concurrent callers,
// and a completed Remove must be visible to every later Contains.
type TokenStore interface {
	Add(token string)
	Contains(token string) bool
	Remove(token string) bool
	Count() int
}

// MemoryTokenStore is a process-local concurrent membership set. It uses
// sync.Map rather than a single mutex so validation traffic never
// serializes behind login traffic; the size counter moves only on the
// winning LoadOrStore/LoadAndDelete, which keeps it exact under races.
type MemoryTokenStore struct {
	tokens sync.Map
	size   atomic.Int64
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Add(token string) {
	if _, loaded := s.tokens.LoadOrStore(token, struct{}{}); !loaded {
		s.size.Add(1)
	}
}

func (s *MemoryTokenStore) Contains(token string) bool {
	_, ok := s.tokens.Load(token)
	return ok
}

// Remove reports whether the token was present. At most one concurrent
// caller observes true for a given token.
func (s *MemoryTokenStore) Remove(token string) bool {
	if _, loaded := s.tokens.LoadAndDelete(token); loaded {
		s.size.Add(-1)
		return true
	}
	return false
}

func (s *MemoryTokenStore) Count() int {
	return int(s.size.Load())
}
