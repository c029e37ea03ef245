package lockorder

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// A Violation describes one observed lock-order inversion. From is the lock
// being acquired and To a lock the same goroutine currently holds, while
// recorded history already contains the opposite order: From held at the
// moment To was acquired.
//
// Violations are delivered to the reporter and not retained by the checker.
type Violation struct {
	From      sync.Locker
	To        sync.Locker
	Goroutine uint64 // id of the detecting goroutine
	Stack     []byte // stack snapshot of the detecting goroutine
}

// A Reporter consumes detected violations. Reports are delivered
// synchronously from the acquiring goroutine, outside the checker's guard but
// before the blocking acquire, so implementations should return promptly and
// must not panic.
type Reporter interface {
	ReportViolation(Violation)
}

// reporterBox gives atomic.Value the single concrete type it requires while
// allowing the boxed Reporter to vary.
type reporterBox struct{ r Reporter }

// SetReporter replaces the checker's process-wide reporter. The swap takes
// effect for violations detected after the call, never retroactively.
// Setting nil restores the default logging reporter.
func (c *Checker) SetReporter(r Reporter) {
	c.reporter.Store(reporterBox{r: r})
}

func (c *Checker) loadReporter() Reporter {
	if box, ok := c.reporter.Load().(reporterBox); ok && box.r != nil {
		return box.r
	}
	return defaultReporter
}

var defaultReporter Reporter = NewLogReporter(logrus.StandardLogger())

// NewLogReporter returns a Reporter that writes one error-level entry per
// violation to log, carrying the lock pair and goroutine as fields and the
// captured stack in the message.
func NewLogReporter(log *logrus.Logger) Reporter {
	return logReporter{log: log}
}

type logReporter struct{ log *logrus.Logger }

func (r logReporter) ReportViolation(v Violation) {
	r.log.WithFields(logrus.Fields{
		"from":      fmt.Sprintf("%p", v.From),
		"to":        fmt.Sprintf("%p", v.To),
		"goroutine": v.Goroutine,
	}).Errorf("lock order inversion\n%s", v.Stack)
}

// NotHeldError is delivered by panic when a goroutine releases a lock absent
// from its held set: a double release, or a release without a prior acquire.
type NotHeldError struct {
	Lock      sync.Locker // the lock passed to Release
	Goroutine uint64      // id of the offending goroutine
}

func (e *NotHeldError) Error() string {
	return fmt.Sprintf("lockorder: goroutine %d released lock %p which it does not hold", e.Goroutine, e.Lock)
}
