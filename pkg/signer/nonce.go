package signer

import (
	"sync"
	"time"
)

// CurrentTimestampMillis returns the wall clock in milliseconds, the
// conventional nonce for one-off transactions.
func CurrentTimestampMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}

// NonceStrategy selects how a NonceManager produces nonces.
type NonceStrategy int

const (
	// NonceTimestamp issues the wall clock in milliseconds, bumped past the
	// previously issued nonce so two calls in the same millisecond stay
	// distinct.
	NonceTimestamp NonceStrategy = iota

	// NonceCounter issues a plain in-process counter starting at 1.
	NonceCounter

	// NonceTimestampCounter packs the millisecond clock into the high bits
	// and a per-millisecond counter into the low 20, for high-frequency
	// flows that outrun the clock.
	NonceTimestampCounter
)

// NonceManager hands out nonces inside a single process. It exists for
// callers who sign faster than the millisecond clock ticks; nothing is
// persisted and nothing coordinates across processes.
type NonceManager struct {
	mu       sync.Mutex
	strategy NonceStrategy
	counter  uint64
	last     uint64
	lastMs   uint64
}

// NewNonceManager creates a manager with the given strategy.
func NewNonceManager(strategy NonceStrategy) *NonceManager {
	return &NonceManager{strategy: strategy}
}

// Next issues one nonce.
func (m *NonceManager) Next() uint64 {
	return m.Reserve(1)
}

// Reserve issues a contiguous block of n nonces and returns the first.
// Batch signing reserves once and assigns base, base+1, …, base+n-1.
func (m *NonceManager) Reserve(n int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var base uint64
	switch m.strategy {
	case NonceCounter:
		base = m.counter + 1
		m.counter += uint64(n)

	case NonceTimestampCounter:
		ms := CurrentTimestampMillis()
		if ms != m.lastMs {
			m.lastMs = ms
			m.counter = 0
		}
		base = ms<<20 | m.counter
		m.counter += uint64(n)

	default: // NonceTimestamp
		base = CurrentTimestampMillis()
		if base <= m.last {
			base = m.last + 1
		}
		m.last = base + uint64(n) - 1
	}
	return base
}
