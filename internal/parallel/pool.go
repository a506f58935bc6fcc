package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Pool is a fixed set of goroutines that execute tiles.
//
// A Pool may serve many concurrent Dispatch calls. After Close, Dispatch
// fails with ErrDeviceUnavailable.
type Pool struct {
	workers int
	work    chan func()
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ Executor = (*Pool)(nil)

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		workers: workers,
		work:    make(chan func(), workers*4),
		logger:  logger,
	}

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	logger.Debug("Worker pool started", zap.Int("workers", workers))
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for fn := range p.work {
		fn()
	}
}

// Dispatch queues every tile of grid and blocks until all have run.
// Tile failures are joined into the returned error; other tiles still run.
func (p *Pool) Dispatch(ctx context.Context, grid Grid, fn func(Tile)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrDeviceUnavailable
	}

	tiles := grid.Tiles()
	errs := make([]error, len(tiles))

	var wg sync.WaitGroup
	wg.Add(len(tiles))
	for i, t := range tiles {
		p.work <- func() {
			defer wg.Done()
			errs[i] = runTile(t, fn)
		}
	}
	p.mu.RUnlock()

	wg.Wait()
	return errors.Join(errs...)
}

// Close stops accepting work and waits for queued tiles to finish.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.work)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Debug("Worker pool stopped", zap.Int("workers", p.workers))
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}
