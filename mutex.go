package lockorder

import "sync"

// Mutex is a drop-in replacement for sync.Mutex whose acquisitions are
// validated by the [Default] checker. The zero value is an unlocked mutex.
//
// A Mutex must not be copied after first use.
type Mutex struct {
	mu sync.Mutex
}

// Lock locks m, reporting an inversion if recorded history contains the
// opposite ordering against any lock the goroutine already holds.
func (m *Mutex) Lock() {
	Acquire(Default, &m.mu)
}

// TryLock attempts to lock m without blocking and reports whether it
// succeeded. A failed attempt is not recorded as an acquisition.
func (m *Mutex) TryLock() bool {
	return TryAcquire(Default, &m.mu)
}

// Unlock unlocks m. It panics with a [*NotHeldError] if the calling goroutine
// does not hold m.
func (m *Mutex) Unlock() {
	Release(Default, &m.mu)
}

// Held reports whether the calling goroutine holds m.
func (m *Mutex) Held() bool {
	return Held(Default, &m.mu)
}

// RWMutex is a drop-in replacement for sync.RWMutex validated by the
// [Default] checker. Read and write acquisitions share a single ordering
// identity: taking the read side of one lock and the write side of another in
// inconsistent orders is still an inversion of the pair. The zero value is an
// unlocked mutex.
//
// An RWMutex must not be copied after first use.
type RWMutex struct {
	mu sync.RWMutex
}

// Lock locks m for writing.
func (m *RWMutex) Lock() {
	Acquire(Default, &m.mu)
}

// TryLock attempts to lock m for writing without blocking.
func (m *RWMutex) TryLock() bool {
	return TryAcquire(Default, &m.mu)
}

// Unlock unlocks m for writing. It panics with a [*NotHeldError] if the
// calling goroutine does not hold m.
func (m *RWMutex) Unlock() {
	Release(Default, &m.mu)
}

// RLock locks m for reading. Reentrant read acquisitions by one goroutine
// only increase the hold count; whether concurrent readers block each other
// is left entirely to the underlying primitive.
func (m *RWMutex) RLock() {
	Default.acquire(makeHandle(&m.mu), &m.mu, m.mu.RLock)
}

// TryRLock attempts to lock m for reading without blocking.
func (m *RWMutex) TryRLock() bool {
	return Default.tryAcquire(makeHandle(&m.mu), &m.mu, m.mu.TryRLock)
}

// RUnlock undoes a single RLock call. It panics with a [*NotHeldError] if the
// calling goroutine does not hold m.
func (m *RWMutex) RUnlock() {
	Default.release(makeHandle(&m.mu), &m.mu, m.mu.RUnlock)
}

// Held reports whether the calling goroutine holds m, for reading or writing.
func (m *RWMutex) Held() bool {
	return Held(Default, &m.mu)
}
