package resilience

import "errors"

var (
	// ErrRateLimited is returned when the window's attempt cap is spent.
	ErrRateLimited = errors.New("resilience: rate limit exceeded")

	// ErrCircuitOpen is returned when the breaker is rejecting calls.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")
)
