package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestAcquireDefaults(t *testing.T) {
	p := Acquire(0)
	defer p.Release()

	if p.Size() < 1 {
		t.Errorf("Size() = %d, want >= 1", p.Size())
	}
}

func TestEachRunsAllTasks(t *testing.T) {
	p := Acquire(3)
	defer p.Release()

	var ran int64
	if err := p.Each(100, func(i int) error {
		atomic.AddInt64(&ran, 1)
		return nil
	}); err != nil {
		t.Fatalf("Each() error = %v", err)
	}

	if ran != 100 {
		t.Errorf("ran %d tasks, want 100", ran)
	}
}

func TestEachBoundsConcurrency(t *testing.T) {
	const workers = 2
	p := Acquire(workers)
	defer p.Release()

	var mu sync.Mutex
	active, peak := 0, 0

	err := p.Each(50, func(i int) error {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Each() error = %v", err)
	}

	if peak > workers {
		t.Errorf("peak concurrency %d exceeds worker bound %d", peak, workers)
	}
}

func TestRunAfterRelease(t *testing.T) {
	p := Acquire(1)
	p.Release()

	if err := p.Run(func() error { return nil }); err == nil {
		t.Error("Run() on released pool should error")
	}
}
