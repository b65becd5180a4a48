package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through and outcomes are recorded.
	StateClosed State = iota
	// StateOpen means calls are rejected without invoking the dependency.
	StateOpen
	// StateHalfOpen means a limited number of trial calls are probing the dependency.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the breaker.
type CircuitBreakerConfig struct {
	// WindowSize is how many of the most recent call outcomes are kept.
	// The failure ratio is only evaluated once the window is full.
	// Default: 10
	WindowSize int

	// FailureRatio is the fraction of failures within a full window that
	// opens the circuit. Default: 0.5
	FailureRatio float64

	// Cooldown is how long the circuit stays open before probing.
	// Default: 30 seconds
	Cooldown time.Duration

	// TrialCalls is how many probe calls the half-open state admits.
	// Default: 1
	TrialCalls int

	// OnStateChange is called on every transition. It runs under the
	// breaker lock, so keep it cheap.
	OnStateChange func(from, to State)
}

// CircuitBreaker is a Closed/Open/HalfOpen admission FSM over a rolling
// window of dependency call outcomes. The lock covers only the FSM
// bookkeeping, never the guarded call itself.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu       sync.Mutex
	state    State
	outcomes []bool // ring of recent outcomes, true = failure
	head     int
	recorded int
	failures int
	openedAt time.Time

	trialsAdmitted  int
	trialsSucceeded int
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.WindowSize <= 0 {
		config.WindowSize = 10
	}
	if config.FailureRatio <= 0 || config.FailureRatio > 1 {
		config.FailureRatio = 0.5
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}
	if config.TrialCalls <= 0 {
		config.TrialCalls = 1
	}

	return &CircuitBreaker{
		config:   config,
		state:    StateClosed,
		outcomes: make([]bool, config.WindowSize),
	}
}

// Execute runs op through the breaker. If the circuit is open, or the
// half-open trial budget is spent, op is not invoked and ErrCircuitOpen
// is returned.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterRequest(err)
	return err
}

// State returns the current state, promoting Open to HalfOpen when the
// cooldown has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.trialsAdmitted >= cb.config.TrialCalls {
			return ErrCircuitOpen
		}
		cb.trialsAdmitted++
	}

	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failure := err != nil

	switch cb.state {
	case StateClosed:
		cb.recordLocked(failure)
		if cb.recorded == cb.config.WindowSize &&
			float64(cb.failures) >= cb.config.FailureRatio*float64(cb.config.WindowSize) {
			cb.transitionLocked(StateOpen)
		}

	case StateHalfOpen:
		if failure {
			// Failed probe: reopen and restart the cooldown.
			cb.transitionLocked(StateOpen)
		} else {
			cb.trialsSucceeded++
			if cb.trialsSucceeded >= cb.config.TrialCalls {
				cb.transitionLocked(StateClosed)
			}
		}
	}
}

func (cb *CircuitBreaker) recordLocked(failure bool) {
	if cb.recorded == cb.config.WindowSize {
		if cb.outcomes[cb.head] {
			cb.failures--
		}
	} else {
		cb.recorded++
	}
	cb.outcomes[cb.head] = failure
	if failure {
		cb.failures++
	}
	cb.head = (cb.head + 1) % cb.config.WindowSize
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.config.Cooldown {
		cb.transitionLocked(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) transitionLocked(next State) {
	if cb.state == next {
		return
	}
	prev := cb.state
	cb.state = next

	switch next {
	case StateOpen:
		cb.openedAt = time.Now()
	case StateHalfOpen:
		cb.trialsAdmitted = 0
		cb.trialsSucceeded = 0
	case StateClosed:
		cb.head = 0
		cb.recorded = 0
		cb.failures = 0
	}

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(prev, next)
	}
}
