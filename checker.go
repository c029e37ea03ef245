package lockorder

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Lockable constrains lock handles to pointer-shaped primitives. The pointer
// element type must be visible at the call site so the checker can hold the
// lock weakly; identity follows from pointer identity, which is also what
// makes a handle usable as a bookkeeping key.
type Lockable[T any] interface {
	*T
	sync.Locker
}

// TryLockable additionally requires a non-blocking TryLock, as provided by
// sync.Mutex and sync.RWMutex.
type TryLockable[T any] interface {
	Lockable[T]
	TryLock() bool
}

// A Checker accumulates lock-acquisition history across all goroutines and
// reports order inversions to its [Reporter]. The zero value is ready to use.
//
// Independent Checkers share no state, so tests and subsystems can validate
// their own lock populations in isolation; [Default] serves as the
// process-wide instance behind [Mutex] and [RWMutex].
type Checker struct {
	// reporter holds a reporterBox. It is read without the coarse guard, so
	// replacement must publish atomically.
	reporter atomic.Value

	// mu is the coarse guard serializing all bookkeeping below. Simplicity
	// over throughput: this is a diagnostic layer, not a hot path. It is
	// never held across a wrapped primitive's blocking Lock.
	mu    sync.Mutex
	held  map[uint64]heldSet
	graph orderGraph
}

// Default is the checker used by the Mutex and RWMutex drop-in types.
var Default = new(Checker)

// heldSet tracks the locks one goroutine currently holds. A key is present
// exactly when its hold count is at least one.
type heldSet map[key]*heldLock

// heldLock keeps a strong reference to a held lock alongside its reentrancy
// count. The strong reference also guarantees that a held lock's graph record
// cannot be purged mid-check.
type heldLock struct {
	lock  sync.Locker
	count int
}

// Acquire records lock in the calling goroutine's held set, checks the
// acquisition against recorded history, and only then blocks on the wrapped
// primitive's own Lock. Any inversions found are delivered to the checker's
// reporter; the acquisition itself proceeds unaffected.
//
// Acquiring a lock the goroutine already holds is reentrant: the hold count
// is incremented and no ordering is checked or recorded. The wrapped
// primitive's own stance on reentrant locking is passed through unchanged.
func Acquire[T any, L Lockable[T]](c *Checker, lock L) {
	c.acquire(makeHandle[T, L](lock), lock, lock.Lock)
}

// TryAcquire attempts the acquisition with the primitive's non-blocking
// TryLock. The inversion check runs against pre-attempt history either way,
// but the acquisition enters the books only if TryLock succeeds, so a failed
// attempt leaves no trace.
func TryAcquire[T any, L TryLockable[T]](c *Checker, lock L) bool {
	return c.tryAcquire(makeHandle[T, L](lock), lock, lock.TryLock)
}

// Release removes one hold of lock from the calling goroutine's held set and
// then delegates to the wrapped primitive's Unlock.
//
// Releasing a lock the calling goroutine does not hold is a programming
// error: Release panics with a [*NotHeldError] and the wrapped primitive is
// left untouched.
func Release[T any, L Lockable[T]](c *Checker, lock L) {
	c.release(makeHandle[T, L](lock), lock, lock.Unlock)
}

// Held reports whether the calling goroutine currently holds lock. It never
// blocks on the wrapped primitive and consults only the caller's own held
// set.
func Held[T any, L Lockable[T]](c *Checker, lock L) bool {
	return c.isHeld(makeHandle[T, L](lock))
}

func (c *Checker) acquire(h handle, lock sync.Locker, block func()) {
	gid := goroutineID()

	c.mu.Lock()
	if e, ok := c.held[gid][h.key]; ok {
		e.count++
		c.mu.Unlock()
		block()
		return
	}
	violations := c.check(h, gid, lock)
	c.commit(h, gid, lock)
	c.mu.Unlock()

	c.report(gid, violations)
	block()
}

func (c *Checker) tryAcquire(h handle, lock sync.Locker, try func() bool) bool {
	gid := goroutineID()

	c.mu.Lock()
	if e, ok := c.held[gid][h.key]; ok {
		c.mu.Unlock()
		if !try() {
			return false
		}
		// Only the owning goroutine mutates its held set, so the entry is
		// still live here.
		c.mu.Lock()
		e.count++
		c.mu.Unlock()
		return true
	}
	violations := c.check(h, gid, lock)
	c.mu.Unlock()

	c.report(gid, violations)
	if !try() {
		return false
	}
	c.mu.Lock()
	c.commit(h, gid, lock)
	c.mu.Unlock()
	return true
}

func (c *Checker) release(h handle, lock sync.Locker, unlock func()) {
	gid := goroutineID()

	c.mu.Lock()
	e, ok := c.held[gid][h.key]
	if !ok {
		c.mu.Unlock()
		panic(&NotHeldError{Lock: lock, Goroutine: gid})
	}
	e.count--
	if e.count == 0 {
		delete(c.held[gid], h.key)
		if len(c.held[gid]) == 0 {
			// The goroutine holds nothing; drop its set so finished
			// goroutines leave no bookkeeping behind.
			delete(c.held, gid)
		}
	}
	c.mu.Unlock()
	unlock()
}

func (c *Checker) isHeld(h handle) bool {
	gid := goroutineID()

	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.held[gid][h.key]
	return ok
}

// check scans the predecessor set of every lock the goroutine holds, before
// any edge from the current call is recorded, so a call can never confirm its
// own ordering against itself. Finding the incoming lock in predecessors(h)
// means history records it being held while h was acquired - the reverse of
// what is happening now. Every conflicting predecessor yields its own
// violation; detection never stops at the first hit.
func (c *Checker) check(h handle, gid uint64, lock sync.Locker) []Violation {
	var violations []Violation
	for k, e := range c.held[gid] {
		rec, ok := c.graph[k]
		if !ok {
			// Cannot happen: every held lock was committed with a record, and
			// held locks are strongly reachable so purge never removes them.
			continue
		}
		c.graph.prune(rec)
		if _, inverted := rec.preds[h.key]; inverted {
			violations = append(violations, Violation{From: lock, To: e.lock})
		}
	}
	return violations
}

// commit makes the acquisition part of recorded history: every currently held
// lock becomes a predecessor of h, and h enters the caller's held set with a
// count of one.
func (c *Checker) commit(h handle, gid uint64, lock sync.Locker) {
	rec := c.ensure(h)
	held := c.held[gid]
	for k := range held {
		rec.preds[k] = struct{}{}
	}
	if held == nil {
		if c.held == nil {
			c.held = make(map[uint64]heldSet)
		}
		held = make(heldSet)
		c.held[gid] = held
	}
	held[h.key] = &heldLock{lock: lock, count: 1}
}

// report delivers violations after the coarse guard has been released, so an
// arbitrarily slow reporter cannot serialize other goroutines' bookkeeping.
// All violations from one call share a single stack snapshot of the detecting
// goroutine.
func (c *Checker) report(gid uint64, violations []Violation) {
	if len(violations) == 0 {
		return
	}
	stack := debug.Stack()
	r := c.loadReporter()
	for i := range violations {
		violations[i].Goroutine = gid
		violations[i].Stack = stack
		r.ReportViolation(violations[i])
	}
}
