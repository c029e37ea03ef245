package lockorder_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/notorious-go/sync/lockorder"
	"github.com/notorious-go/sync/lockorder/locktest"
)

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	from, to := new(locktest.Lock), new(locktest.Lock)
	r := lockorder.NewLogReporter(logger)
	r.ReportViolation(lockorder.Violation{
		From:      from,
		To:        to,
		Goroutine: 7,
		Stack:     []byte("goroutine 7 [running]:"),
	})

	out := buf.String()
	assert.Contains(t, out, "lock order inversion")
	assert.Contains(t, out, fmt.Sprintf("%p", from))
	assert.Contains(t, out, fmt.Sprintf("%p", to))
	assert.Contains(t, out, "goroutine 7 [running]:")
}
