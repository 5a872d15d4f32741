package infra

import (
	"errors"
	"sync"
	"time"
)

// BreakerState is the position of a Breaker: closed lets calls through, open
// fails them fast, half-open lets probes through until enough succeed.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned by Do without calling fn while the breaker is open.
var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerSettings struct {
	FailureThreshold int           // consecutive failures that trip the breaker
	SuccessThreshold int           // half-open successes needed to close again
	Cooldown         time.Duration // time spent open before probing
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
	}
}

// Breaker guards calls to a remote dependency (object storage) so a dead
// endpoint fails rows quickly instead of waiting on every request timeout.
type Breaker struct {
	mu        sync.Mutex
	settings  BreakerSettings
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time
}

func NewBreaker(s BreakerSettings) *Breaker {
	def := DefaultBreakerSettings()
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = def.FailureThreshold
	}
	if s.SuccessThreshold <= 0 {
		s.SuccessThreshold = def.SuccessThreshold
	}
	if s.Cooldown <= 0 {
		s.Cooldown = def.Cooldown
	}
	return &Breaker{settings: s, now: time.Now}
}

// State reports the current state, moving open to half-open once the
// cooldown has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

func (b *Breaker) currentLocked() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		b.state = BreakerHalfOpen
		b.successes = 0
	}
	return b.state
}

// Do runs fn unless the breaker is open and records its outcome.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.currentLocked() == BreakerOpen {
		b.mu.Unlock()
		return ErrBreakerOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) recordFailure() {
	switch b.state {
	case BreakerHalfOpen:
		b.trip()
	default:
		b.failures++
		if b.failures >= b.settings.FailureThreshold {
			b.trip()
		}
	}
}

func (b *Breaker) recordSuccess() {
	switch b.state {
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.settings.SuccessThreshold {
			b.state = BreakerClosed
			b.failures = 0
			b.successes = 0
		}
	default:
		b.failures = 0
	}
}

func (b *Breaker) trip() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
}
