package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// task carries the start/stop lifecycle shared by the node's periodic services.
type task struct {
	name   string
	logger zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newTask(name string, logger zerolog.Logger) *task {
	return &task{name: name, logger: logger.With().Str("service", name).Logger()}
}

// start runs fn in its own goroutine until stop is called.
func (t *task) start(fn func(ctx context.Context)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctx != nil {
		t.logger.Warn().Msg("Service is already running")
		return errors.New(t.name + " service is already running")
	}

	t.ctx, t.cancel = context.WithCancel(context.Background())

	ctx := t.ctx
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn(ctx)
	}()

	t.logger.Info().Msg("Service started successfully")
	return nil
}

// stop cancels the goroutine and waits for it to return.
func (t *task) stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctx == nil {
		t.logger.Warn().Msg("Service is not running")
		return errors.New(t.name + " service is not running")
	}

	t.cancel()
	t.wg.Wait()

	t.ctx = nil
	t.cancel = nil

	t.logger.Info().Msg("Service stopped successfully")
	return nil
}

// every calls fn each interval until ctx ends. When immediate is set fn also
// runs once before the first tick.
func every(ctx context.Context, interval time.Duration, immediate bool, fn func(ctx context.Context)) {
	if immediate {
		fn(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// sleepCtx sleeps for d or until ctx is cancelled. Returns false if
// cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
