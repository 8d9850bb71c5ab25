// Package locks provides in-process keyed mutual exclusion.
package locks

import "sync"

// KeyedMutex serializes operations that share the same string key while
// letting operations on different keys proceed concurrently. It is used to
// keep delivery-code issue and verify for one order from interleaving.
//
// Entries are never evicted; the expected key space (active order ids) is
// small and bounded by order turnover.
type KeyedMutex struct {
	mutexes sync.Map
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the mutex for key, creating it on first use.
func (m *KeyedMutex) Lock(key string) {
	mu, _ := m.mutexes.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

// Unlock releases the mutex for key. Calling Unlock for a key that was never
// locked panics, same as sync.Mutex.
func (m *KeyedMutex) Unlock(key string) {
	mu, ok := m.mutexes.Load(key)
	if !ok {
		panic("locks: unlock of unknown key " + key)
	}
	mu.(*sync.Mutex).Unlock()
}
