package lockorder_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/sync/lockorder"
	"github.com/notorious-go/sync/lockorder/locktest"
)

func TestStressConsistentOrder(t *testing.T) {
	checker := new(lockorder.Checker)
	recorder := new(locktest.Recorder)
	checker.SetReporter(recorder)

	const (
		goroutines = 8
		iterations = 100
	)
	locks := make([]*sync.Mutex, 6)
	for i := range locks {
		locks[i] = new(sync.Mutex)
	}

	var g errgroup.Group
	g.SetLimit(goroutines)
	for range goroutines {
		g.Go(func() error {
			for range iterations {
				for _, mu := range locks {
					lockorder.Acquire(checker, mu)
				}
				for j := len(locks) - 1; j >= 0; j-- {
					lockorder.Release(checker, locks[j])
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Zero(t, recorder.Len(), "a globally consistent order must never be reported")

	// Reintroduce a single goroutine taking one pair in reverse.
	g.Go(func() error {
		lockorder.Acquire(checker, locks[4])
		lockorder.Acquire(checker, locks[1])
		lockorder.Release(checker, locks[1])
		lockorder.Release(checker, locks[4])
		return nil
	})
	require.NoError(t, g.Wait())
	assert.GreaterOrEqual(t, recorder.Count(locks[1], locks[4]), 1,
		"the reversed pair must be reported at least once")
}
