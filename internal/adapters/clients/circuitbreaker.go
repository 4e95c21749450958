package clients

import (
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen rejects requests until the open timeout elapses.
	StateOpen

	// StateHalfOpen admits a limited number of probe requests.
	StateHalfOpen
)

// String returns a human-readable name for the state.
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

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// HalfOpenLimit is both the number of concurrent probes admitted while
	// half-open and the number of consecutive probe successes that close it.
	HalfOpenLimit int
}

// counts tracks outcomes within the current state. It is reset on every transition.
type counts struct {
	consecutiveFailures  int
	consecutiveSuccesses int
	inFlight             int
}

// CircuitBreaker stops calling the remote endpoint after repeated failures so a
// dead endpoint fails fast instead of stalling every sync pass on timeouts.
//
//	closed    -> open       MaxFailures consecutive failures
//	open      -> half-open  Timeout elapsed since opening
//	half-open -> closed     HalfOpenLimit consecutive successes
//	half-open -> open       any failure
type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      CircuitBreakerConfig
	state    State
	counts   counts
	openedAt time.Time

	onStateChange func(from, to State)
	now           func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}

	if cfg.HalfOpenLimit < 1 {
		cfg.HalfOpenLimit = 1
	}

	return &CircuitBreaker{
		cfg: cfg,
		now: time.Now,
	}
}

// OnStateChange registers a callback invoked after every transition.
// The callback runs without the breaker's lock held.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.onStateChange = fn
}

// Allow reports whether a request may proceed. Callers that receive true must
// report the outcome with RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()

	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.Timeout {
		notify := cb.setState(StateHalfOpen)
		cb.counts.inFlight++
		cb.mu.Unlock()
		notify()

		return true
	}

	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		if cb.counts.inFlight >= cb.cfg.HalfOpenLimit {
			return false
		}

		cb.counts.inFlight++

		return true
	default:
		return false
	}
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()

	notify := func() {}

	switch cb.state {
	case StateClosed:
		cb.counts.consecutiveFailures = 0
	case StateHalfOpen:
		cb.counts.inFlight--
		cb.counts.consecutiveSuccesses++

		if cb.counts.consecutiveSuccesses >= cb.cfg.HalfOpenLimit {
			notify = cb.setState(StateClosed)
		}
	}

	cb.mu.Unlock()
	notify()
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()

	notify := func() {}

	switch cb.state {
	case StateClosed:
		cb.counts.consecutiveFailures++

		if cb.counts.consecutiveFailures >= cb.cfg.MaxFailures {
			notify = cb.setState(StateOpen)
		}
	case StateHalfOpen:
		notify = cb.setState(StateOpen)
	}

	cb.mu.Unlock()
	notify()
}

// State returns the current state without triggering the open timeout.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// setState transitions and returns the notification to run once the lock is released.
// Must be called with the lock held.
func (cb *CircuitBreaker) setState(to State) func() {
	from := cb.state
	if from == to {
		return func() {}
	}

	cb.state = to
	cb.counts = counts{}

	if to == StateOpen {
		cb.openedAt = cb.now()
	}

	fn := cb.onStateChange
	if fn == nil {
		return func() {}
	}

	return func() { fn(from, to) }
}
