package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls   atomic.Int32
	removed int
	err     error
}

func (s *countingSweeper) Sweep(context.Context) (int, error) {
	s.calls.Add(1)
	return s.removed, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_SweepAll(t *testing.T) {
	ok := &countingSweeper{removed: 3}
	failing := &countingSweeper{err: errors.New("database unavailable")}
	w := New(map[string]Sweeper{"memory": ok, "postgres": failing}, time.Minute, discardLogger())

	removed := w.SweepAll(context.Background())

	assert.Equal(t, 3, removed)
	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(1), failing.calls.Load())
}

func TestWorker_SweepAllCancelled(t *testing.T) {
	s := &countingSweeper{removed: 1}
	w := New(map[string]Sweeper{"memory": s}, time.Minute, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, w.SweepAll(ctx))
	assert.Equal(t, int32(0), s.calls.Load())
}

func TestWorker_Interval(t *testing.T) {
	w := New(map[string]Sweeper{"memory": &countingSweeper{}}, 5*time.Minute, discardLogger())

	assert.Equal(t, 5*time.Minute, w.Interval())
}

func TestWorker_StartStop(t *testing.T) {
	s := &countingSweeper{removed: 1}
	w := New(map[string]Sweeper{"memory": s}, 10*time.Millisecond, discardLogger())

	w.Start()
	assert.Eventually(t, func() bool { return s.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	calls := s.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, s.calls.Load())
}
