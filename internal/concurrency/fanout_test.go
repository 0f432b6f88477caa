package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	task := func(ctx context.Context) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil
	}

	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = task
	}
	assert.NoError(t, Run(context.Background(), 3, tasks...))
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunReturnsFirstErrorAndCancels(t *testing.T) {
	boom := errors.New("boom")
	var cancelled atomic.Bool

	err := Run(context.Background(), 0,
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				cancelled.Store(true)
			case <-time.After(time.Second):
			}
			return nil
		},
	)
	assert.ErrorIs(t, err, boom)
	assert.True(t, cancelled.Load())
}
