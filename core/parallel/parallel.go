// Package parallel provides the bounded worker pool shared by the pipeline.
//
// The pool is an explicit, scope-acquired value: the pipeline acquires it
// once at start, threads it through training, and releases it with a defer
// at the end of the run. There is no process-wide pool.
package parallel

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mlpipes/titanic/pkg/errors"
)

// Pool bounds the number of goroutines used for cross-validation folds and
// independent model fits.
type Pool struct {
	workers int

	mu       sync.Mutex
	released bool
}

// Acquire returns a pool with the given number of workers.
// A non-positive count defaults to the number of available processing
// units minus one, with a floor of one worker.
func Acquire(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.workers
}

// Release marks the pool unusable. Every Run call joins its goroutines
// before returning, so no work is in flight after Release.
func (p *Pool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
}

// Run executes the tasks on the pool's workers and returns the first error.
func (p *Pool) Run(tasks ...func() error) error {
	if err := p.usable(); err != nil {
		return err
	}
	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, task := range tasks {
		g.Go(task)
	}
	return g.Wait()
}

// Each executes fn for every index in [0, n) on the pool's workers and
// returns the first error.
func (p *Pool) Each(n int, fn func(i int) error) error {
	if err := p.usable(); err != nil {
		return err
	}
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

func (p *Pool) usable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return errors.New("parallel: pool already released")
	}
	return nil
}
