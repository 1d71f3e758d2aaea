package marketdata

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// circuitState is one of closed (normal), open (skipping calls), or
// half-open (probing whether the provider has recovered).
type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// circuitBreaker tracks one provider's recent failure history and decides
// whether a new call should be attempted at all. It does not know how to
// call the provider; the registry consults canAttempt before invoking it
// and reports the outcome afterward.
type circuitBreaker struct {
	mu              sync.Mutex
	name            string
	maxFailures     int
	resetTimeout    time.Duration
	state           circuitState
	failures        int
	halfOpenSuccess int
	openedAt        time.Time
	log             zerolog.Logger
}

func newCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration, log zerolog.Logger) *circuitBreaker {
	return &circuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		log:          log.With().Str("provider", name).Logger(),
	}
}

// canAttempt reports whether a call should be made. A breaker in the open
// state transitions to half-open once resetTimeout has elapsed. While
// half-open every call is allowed through: one penalized failure reopens
// the breaker and two successes close it.
func (cb *circuitBreaker) canAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuitClosed:
		return true
	case circuitHalfOpen:
		return true
	case circuitOpen:
		if time.Since(cb.openedAt) >= cb.resetTimeout {
			cb.state = circuitHalfOpen
			cb.halfOpenSuccess = 0
			cb.log.Info().Msg("circuit half-open, probing provider")
			return true
		}
		return false
	default:
		return false
	}
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state == circuitHalfOpen {
		cb.halfOpenSuccess++
		if cb.halfOpenSuccess >= 2 {
			cb.state = circuitClosed
			cb.log.Info().Msg("circuit closed after recovery")
		}
	}
}

// recordFailure registers a penalized failure. Only RetryFailoverWithPenalty
// classified errors should reach this; RetryNextProvider errors mean the
// provider is fine but doesn't cover this asset, so they never penalize.
func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == circuitHalfOpen {
		cb.state = circuitOpen
		cb.openedAt = time.Now()
		cb.log.Warn().Msg("circuit reopened after failed probe")
		return
	}

	cb.failures++
	if cb.failures >= cb.maxFailures {
		cb.state = circuitOpen
		cb.openedAt = time.Now()
		cb.log.Warn().Int("failures", cb.failures).Msg("circuit opened")
	}
}

func (cb *circuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case circuitOpen:
		return "open"
	case circuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}
