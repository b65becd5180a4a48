package resilience

import "context"

// Gate composes the login path's admission controls in a fixed order:
// the rate limiter is consulted first, then the circuit breaker runs the
// guarded dependency call. A rejection at either stage means op is never
// invoked and nothing downstream is consumed.
type Gate struct {
	limiter *RateLimiter
	breaker *CircuitBreaker
}

func NewGate(limiter *RateLimiter, breaker *CircuitBreaker) *Gate {
	return &Gate{limiter: limiter, breaker: breaker}
}

func (g *Gate) Execute(ctx context.Context, op func(context.Context) error) error {
	if !g.limiter.Allow() {
		return ErrRateLimited
	}
	return g.breaker.Execute(ctx, op)
}

// BreakerState exposes the breaker state for health reporting.
func (g *Gate) BreakerState() State {
	return g.breaker.State()
}
