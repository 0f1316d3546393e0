package cache

import (
	"sync"
	"time"
)

// CircuitBreaker gates cache access when Redis is failing, so list
// requests fall through to the database instead of eating a timeout on
// every call. Closed = normal, open = skip cache until the cooldown
// elapses, then probe again.
type CircuitBreaker struct {
	mu              sync.Mutex
	failureCount    int
	lastFailureTime time.Time

	maxFailures int
	cooldown    time.Duration
}

func NewCircuitBreaker(maxFailures int, cooldown time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{maxFailures: maxFailures, cooldown: cooldown}
}

// Ready reports whether the cache should be tried at all.
func (cb *CircuitBreaker) Ready() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.failureCount < cb.maxFailures {
		return true
	}
	if time.Since(cb.lastFailureTime) >= cb.cooldown {
		// Half-open: allow one probe; RecordSuccess resets the count.
		return true
	}
	return false
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailureTime = time.Now()
}
