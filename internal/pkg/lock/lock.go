// Package lock provides keyed mutexes for serializing work per entity.
package lock

import "sync"

// KeyedLock manages per-key mutexes so operations on the same entity
// never interleave while operations on different entities run freely.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLock creates a new keyed lock manager.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{
		locks: make(map[string]*entry),
	}
}

// Lock acquires the mutex for the given key, creating it on first use.
func (l *KeyedLock) Lock(key string) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for the given key. Entries with no waiters
// are removed so the map does not grow without bound.
func (l *KeyedLock) Unlock(key string) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if ok {
		e.refs--
		if e.refs <= 0 {
			delete(l.locks, key)
		}
	}
	l.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}

// WithLock runs fn while holding the mutex for key.
func (l *KeyedLock) WithLock(key string, fn func()) {
	l.Lock(key)
	defer l.Unlock(key)
	fn()
}
