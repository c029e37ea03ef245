// Package lockorder detects lock-order inversions at runtime by wrapping
// ordinary mutual-exclusion primitives and observing the order in which each
// goroutine acquires them. When two goroutines are seen taking the same pair
// of locks in opposite relative orders - the classic precondition for
// deadlock - the violation is reported through a pluggable [Reporter].
//
// The package is a diagnostic layer, not a safety mechanism. It never
// prevents a deadlock, never rolls back a partial acquisition, and never
// imposes a global lock ordering. It only reports the first moment an
// inversion becomes observable given the acquisition history accumulated so
// far, so that ambitious multi-goroutine code can be hardened incrementally.
//
// # Checking Locks
//
// A [Checker] accumulates acquisition history. The zero-value Checker is
// ready to use, and the package-level [Default] checker backs the [Mutex] and
// [RWMutex] drop-in types:
//
//	var mu lockorder.Mutex
//	mu.Lock()
//	defer mu.Unlock()
//
// Any pointer-shaped primitive with Lock and Unlock methods can be checked
// directly against a checker of your choosing:
//
//	checker := new(lockorder.Checker)
//	var a, b sync.Mutex
//	lockorder.Acquire(checker, &a)
//	lockorder.Acquire(checker, &b) // records that b was taken while a was held
//	lockorder.Release(checker, &b)
//	lockorder.Release(checker, &a)
//
// If any goroutine later acquires &a while holding &b, the checker reports an
// inversion for the pair. Acquisitions are reentrant: a goroutine acquiring a
// lock it already holds only increments a hold count, and the inversion check
// is skipped. Whether the wrapped primitive itself tolerates reentrant
// locking is entirely its own business; the checker delegates to it
// unchanged.
//
// # Detection Algorithm
//
// For every lock the checker maintains a predecessor set: every distinct lock
// that some goroutine held at the moment this lock was acquired, accumulated
// over the entire life of the process. When a goroutine acquires lock X while
// holding locks H, the checker first scans the predecessor set of each h in H.
// Finding X there means some earlier acquisition took h while X was held, and
// the current call is taking X while h is held - a reversal. Every conflicting
// h produces its own report; detection never stops at the first hit. Only
// after the scan does the checker add H to the predecessor set of X, so a
// call can never confirm its own ordering against itself.
//
// All bookkeeping is serialized under one coarse guard. That guard is always
// released before the wrapped primitive's blocking Lock is invoked, so a
// goroutine stuck waiting for a contended lock never stalls other goroutines'
// bookkeeping.
//
// # Weak Bookkeeping
//
// The predecessor map holds locks weakly. A lock referenced only by the
// checker becomes collectible, its graph entry is purged once the runtime
// frees it, and stale predecessor entries are discarded lazily during
// subsequent scans. Long-running processes that create and discard locks do
// not accumulate bookkeeping without bound.
//
// # Reporting
//
// Detected inversions are delivered to the checker's process-wide [Reporter]
// as a [Violation] carrying the two lock handles and a stack snapshot of the
// detecting goroutine. Reports are fail-open: the acquisition in progress
// continues unaffected. The default reporter logs through logrus to standard
// error; [Checker.SetReporter] swaps in another reporter for all subsequent
// violations.
//
// Misuse of the API itself is a hard error: releasing a lock the calling
// goroutine does not hold panics with a [*NotHeldError] rather than being
// silently absorbed.
//
// # When NOT to Use This Package
//
// The checker serializes all bookkeeping globally, which makes it unsuitable
// for hot paths. It is meant for the phase of a project when you are
// considering your ambitious multi-goroutine code a mistake and are trying to
// limit the damage. Production builds should use the raw primitives and keep
// the checked types behind a build tag, as the deadlock-detection wrappers in
// larger codebases conventionally do.
package lockorder
