package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"newswizard/internal/metrics"
)

// Sweeper удаляет просроченные разговоры и возвращает их количество.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Worker периодически очищает хранилища разговоров от просроченного состояния.
type Worker struct {
	sweepers map[string]Sweeper
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// New создает воркер. sweepers индексируются именем хранилища для журнала.
func New(sweepers map[string]Sweeper, interval time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		sweepers: sweepers,
		interval: interval,
		timeout:  30 * time.Second,
		log:      log.With(slog.String("component", "worker")),
	}
}

// Start запускает цикл очистки в отдельной горутине.
func (w *Worker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.done = make(chan struct{})
	go w.run()
}

// Stop отменяет контекст и дожидается завершения текущего цикла.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	w.log.Info("Conversation sweep worker started",
		slog.String("interval", w.interval.String()),
		slog.Int("store_count", len(w.sweepers)),
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.SweepAll(w.ctx)
		case <-w.ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// SweepAll очищает все хранилища параллельно и возвращает общее число удаленных разговоров.
func (w *Worker) SweepAll(ctx context.Context) int {
	start := time.Now()
	var wg sync.WaitGroup
	var removed, errorCount int64
	for name, s := range w.sweepers {
		name, s := name, s
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			opCtx, opCancel := context.WithTimeout(ctx, w.timeout)
			defer opCancel()
			n, err := s.Sweep(opCtx)
			if err != nil {
				atomic.AddInt64(&errorCount, 1)
				w.log.Error("Conversation sweep failed",
					slog.String("store", name),
					slog.Any("error", err),
				)
				return
			}
			atomic.AddInt64(&removed, int64(n))
		}()
	}
	wg.Wait()
	metrics.ConversationsSwept.Add(float64(removed))
	w.log.Debug("Conversation sweep completed",
		slog.Int("removed", int(removed)),
		slog.Int("errors", int(errorCount)),
		slog.Duration("duration", time.Since(start)),
	)
	return int(removed)
}

// Interval возвращает период очистки.
func (w *Worker) Interval() time.Duration { return w.interval }
