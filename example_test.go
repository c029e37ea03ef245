package lockorder_test

import (
	"fmt"
	"sync"

	"github.com/notorious-go/sync/lockorder"
)

// A namedReporter prints human-readable lock names instead of addresses, so
// the example output is deterministic.
type namedReporter map[sync.Locker]string

func (r namedReporter) ReportViolation(v lockorder.Violation) {
	fmt.Printf("inversion: acquiring %s while holding %s\n", r[v.From], r[v.To])
}

// This example runs two workers that take the same pair of locks in opposite
// orders, the classic deadlock precondition. The checker reports the pair at
// the moment the second worker makes the reversal observable.
func Example() {
	checker := new(lockorder.Checker)
	var database, cache sync.Mutex
	checker.SetReporter(namedReporter{&database: "database", &cache: "cache"})

	// onWorker runs f on its own goroutine and waits for it, standing in for
	// the application's concurrent callers. Held sets are per goroutine, so
	// the two acquisition sequences below belong to different holders.
	onWorker := func(f func()) {
		done := make(chan struct{})
		go func() {
			defer close(done)
			f()
		}()
		<-done
	}

	// The first worker establishes the order: database, then cache.
	onWorker(func() {
		lockorder.Acquire(checker, &database)
		lockorder.Acquire(checker, &cache)
		lockorder.Release(checker, &cache)
		lockorder.Release(checker, &database)
	})

	// The second worker reverses it. Taking database while holding cache
	// conflicts with the recorded history and is reported; the acquisition
	// itself still proceeds.
	onWorker(func() {
		lockorder.Acquire(checker, &cache)
		lockorder.Acquire(checker, &database)
		lockorder.Release(checker, &database)
		lockorder.Release(checker, &cache)
	})

	// Output:
	// inversion: acquiring database while holding cache
}

func ExampleMutex() {
	var mu lockorder.Mutex
	mu.Lock()
	fmt.Println("held:", mu.Held())
	mu.Unlock()
	fmt.Println("held:", mu.Held())
	// Output:
	// held: true
	// held: false
}
