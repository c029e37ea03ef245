package locktest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notorious-go/sync/lockorder"
	"github.com/notorious-go/sync/lockorder/locktest"
)

func TestRecorder(t *testing.T) {
	r := new(locktest.Recorder)
	a, b := new(locktest.Lock), new(locktest.Lock)
	assert.Zero(t, r.Len())

	r.ReportViolation(lockorder.Violation{From: a, To: b})
	r.ReportViolation(lockorder.Violation{From: b, To: a})

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 1, r.Count(a, b))
	assert.Equal(t, 1, r.Count(b, a))
	assert.Zero(t, r.Count(a, a))

	pairs := r.Pairs()
	require.Len(t, pairs, 2)
	assert.Same(t, a, pairs[0].From)
	assert.Same(t, b, pairs[0].To)
	assert.Same(t, b, pairs[1].From)
	assert.Same(t, a, pairs[1].To)
}

func TestLock(t *testing.T) {
	l := new(locktest.Lock)
	l.Lock()
	l.Lock()
	assert.Equal(t, int32(2), l.HoldCount())
	assert.True(t, l.TryLock())
	l.Unlock()
	l.Unlock()
	l.Unlock()
	assert.Equal(t, int32(0), l.HoldCount())

	rejected := &locktest.Lock{RejectTry: true}
	assert.False(t, rejected.TryLock())
	assert.Equal(t, int32(0), rejected.HoldCount())
}
