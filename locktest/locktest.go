// Package locktest provides utilities for testing code that is validated by
// the lockorder package: a [Recorder] that captures reported violations for
// inspection, and a [Lock] that stands in for a real mutual-exclusion
// primitive without ever blocking.
//
// A typical test points an independent checker at a Recorder, drives the
// acquisition pattern under test, and asserts on the recorded pairs:
//
//	checker := new(lockorder.Checker)
//	recorder := new(locktest.Recorder)
//	checker.SetReporter(recorder)
//
//	a, b := new(locktest.Lock), new(locktest.Lock)
//	lockorder.Acquire(checker, a)
//	lockorder.Acquire(checker, b)
//	// ...
//	if recorder.Len() != 0 {
//	    t.Errorf("unexpected violations: %v", recorder.Pairs())
//	}
package locktest

import (
	"sync"
	"sync/atomic"

	"github.com/notorious-go/sync/lockorder"
)

// A Recorder is a lockorder.Reporter that captures every violation it
// receives, in order of delivery. It is safe for concurrent use, and its zero
// value is ready to use.
type Recorder struct {
	mu         sync.Mutex
	violations []lockorder.Violation
}

func (r *Recorder) ReportViolation(v lockorder.Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, v)
}

// Len reports the number of violations recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.violations)
}

// Violations returns a copy of all recorded violations.
func (r *Recorder) Violations() []lockorder.Violation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]lockorder.Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

// Pairs returns the recorded violations reduced to their (From, To) lock
// pairs, which is usually all a test needs to compare against expectations.
func (r *Recorder) Pairs() []Pair {
	r.mu.Lock()
	defer r.mu.Unlock()
	pairs := make([]Pair, len(r.violations))
	for i, v := range r.violations {
		pairs[i] = Pair{From: v.From, To: v.To}
	}
	return pairs
}

// Count reports how many recorded violations match the given pair exactly.
func (r *Recorder) Count(from, to sync.Locker) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.violations {
		if v.From == from && v.To == to {
			n++
		}
	}
	return n
}

// A Pair is one reported inversion stripped of its stack snapshot.
type Pair struct {
	From, To sync.Locker
}

// A Lock is a reentrant, non-blocking stand-in for a real mutual-exclusion
// primitive. It never blocks, so a single-goroutine test can exercise
// reentrant acquisition patterns that would self-deadlock a sync.Mutex, and
// it balances Lock against Unlock calls so tests can verify that the checker
// delegated to the wrapped primitive.
//
// The zero value is an unlocked Lock.
type Lock struct {
	// RejectTry makes TryLock report failure without taking the lock,
	// simulating a contended primitive. It must be set before the Lock is
	// shared between goroutines.
	RejectTry bool

	n atomic.Int32
}

func (l *Lock) Lock() {
	l.n.Add(1)
}

func (l *Lock) Unlock() {
	l.n.Add(-1)
}

func (l *Lock) TryLock() bool {
	if l.RejectTry {
		return false
	}
	l.n.Add(1)
	return true
}

// HoldCount reports the current balance of Lock and TryLock calls against
// Unlock calls.
func (l *Lock) HoldCount() int32 {
	return l.n.Load()
}
