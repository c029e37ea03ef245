package lockorder

import (
	"runtime"
	"weak"
)

// A key identifies one lock in the bookkeeping maps without keeping it
// reachable. Keys are weak.Pointer values boxed in an interface: they are
// comparable, stable for the life of the process, and equal exactly when they
// were minted from the same pointer, even after the pointee is collected.
type key any

// A handle carries everything the checker needs to track one lock: its weak
// identity key, a liveness probe, and a hook that fires once the lock has
// been collected. Handles are minted per call at the generic boundary and
// never stored.
type handle struct {
	key    key
	alive  func() bool
	onFree func(fn func())
}

func makeHandle[T any, L Lockable[T]](lock L) handle {
	w := weak.Make((*T)(lock))
	return handle{
		key:   w,
		alive: func() bool { return w.Value() != nil },
		onFree: func(fn func()) {
			runtime.AddCleanup((*T)(lock), func(struct{}) { fn() }, struct{}{})
		},
	}
}

// A lockRecord is the graph node for one lock.
type lockRecord struct {
	// alive reports whether the lock itself is still reachable.
	alive func() bool
	// preds holds the key of every lock observed held at the moment this lock
	// was acquired, accumulated over the entire process run.
	preds map[key]struct{}
}

// An orderGraph maps each lock ever acquired through a checker to its
// predecessor set. Read and mutated only under the owning checker's guard.
type orderGraph map[key]*lockRecord

// prune discards predecessors whose lock has been collected. It runs on every
// read of a predecessor set, so stale entries never survive a scan.
func (g orderGraph) prune(rec *lockRecord) {
	for k := range rec.preds {
		r, ok := g[k]
		if !ok || !r.alive() {
			delete(rec.preds, k)
		}
	}
}

// ensure returns the graph record for h, creating it on first sight. Creation
// registers a collection hook that purges the record once the lock itself is
// gone; appearances of the lock in other predecessor sets are left to prune.
func (c *Checker) ensure(h handle) *lockRecord {
	if rec, ok := c.graph[h.key]; ok {
		return rec
	}
	if c.graph == nil {
		c.graph = make(orderGraph)
	}
	rec := &lockRecord{alive: h.alive, preds: make(map[key]struct{})}
	c.graph[h.key] = rec
	// Capture only the key: holding the handle here would keep the lock
	// reachable from its own collection hook.
	k := h.key
	h.onFree(func() { c.purge(k) })
	return rec
}

// purge drops a collected lock's record. Called from the runtime's cleanup
// goroutine, hence the explicit locking.
func (c *Checker) purge(k key) {
	c.mu.Lock()
	delete(c.graph, k)
	c.mu.Unlock()
}
