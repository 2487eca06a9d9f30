package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/repasses-dev/repasses/internal/log"
)

// Memo memoizes computations whose results depend on a single data
// source. Each call carries the source fingerprint; when it differs from
// the one the cached entries were computed against, they are all dropped.
type Memo[T any] struct {
	entries *LRUCache[T]
	group   singleflight.Group
	log     *log.Logger

	mu          sync.Mutex
	fingerprint string
}

// NewMemo creates a memo holding at most maxEntries results for ttl.
func NewMemo[T any](maxEntries int, ttl time.Duration, logger *log.Logger) *Memo[T] {
	if logger == nil {
		logger = log.Discard()
	}
	return &Memo[T]{
		entries: NewLRUCache[T](maxEntries, ttl),
		log:     logger.WithComponent(log.ComponentCache),
	}
}

// Do returns the cached value for key or runs fn. Concurrent callers with
// the same key share one run of fn. Errors are returned but never stored.
func (m *Memo[T]) Do(ctx context.Context, key, fingerprint string, fn func(context.Context) (T, error)) (T, error) {
	m.checkFingerprint(fingerprint)

	if v, ok := m.entries.Get(key); ok {
		m.log.Debug("hit", log.FieldCacheKey, key)
		return v, nil
	}

	v, err, _ := m.group.Do(fingerprint+"\x00"+key, func() (any, error) {
		if v, ok := m.entries.Get(key); ok {
			return v, nil
		}
		v, err := fn(ctx)
		if err != nil {
			return v, err
		}
		m.sweep()
		if m.current() == fingerprint && m.entries.Set(key, v) {
			m.log.Debug("evicted least recently used entry", log.FieldOperation, log.OpEvict)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

// Invalidate drops every cached result.
func (m *Memo[T]) Invalidate() {
	if n := m.entries.Purge(); n > 0 {
		m.log.Info("cache invalidated", "entries", n)
	}
}

// Size returns the number of live cached results.
func (m *Memo[T]) Size() int {
	m.sweep()
	return m.entries.Size()
}

func (m *Memo[T]) sweep() {
	if n := m.entries.CleanExpired(); n > 0 {
		m.log.Debug("expired entries removed", log.FieldOperation, log.OpEvict, "entries", n)
	}
}

func (m *Memo[T]) checkFingerprint(fingerprint string) {
	m.mu.Lock()
	changed := m.fingerprint != fingerprint
	previous := m.fingerprint
	m.fingerprint = fingerprint
	m.mu.Unlock()

	if changed && previous != "" {
		m.log.Info("source changed", "previous", previous, "current", fingerprint)
		m.Invalidate()
	}
}

func (m *Memo[T]) current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fingerprint
}
