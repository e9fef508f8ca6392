// Package parallel provides the CPU execution grid for frame conversion.
//
// A frame is cut into horizontal bands of rows (see [Split]) and every band is
// an independent work item. Bands never overlap, so work items share no
// mutable state and need no synchronization beyond the completion barrier in
// [WorkerPool.Dispatch].
package parallel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned when work is dispatched to a closed pool, or when
// the pool closes before every work item ran.
var ErrPoolClosed = errors.New("parallel: worker pool is closed")

// PanicError reports a work item that panicked.
type PanicError struct {
	Band  Band
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("parallel: band [%d,%d) panicked: %v", e.Band.Start, e.Band.End, e.Value)
}

// WorkerPool is a pool of goroutines executing conversion bands.
//
// Each worker owns a queue and steals from the other queues when its own is
// empty, which balances bands that take longer (cache misses, preemption).
//
// Thread safety: WorkerPool is safe for concurrent use. Close must not race
// with Dispatch; callers serialize the two.
type WorkerPool struct {
	workers int

	// workQueues holds per-worker work queues.
	workQueues []chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// 4x workers hides submission latency.
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			if work != nil {
				work()
			}

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				// Nothing anywhere, block on own queue.
				select {
				case <-p.done:
					p.drainQueue(myQueue)
					return
				case work := <-myQueue:
					if work != nil {
						work()
					}
				}
			}
		}
	}
}

// drainQueue executes all remaining work in a queue.
func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
// Returns nil if no work is available.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes work across workers and waits for all to complete.
// It reports how many items actually ran; fewer than len(work) means the pool
// was closed underneath the call.
func (p *WorkerPool) ExecuteAll(work []func()) int {
	if len(work) == 0 || !p.running.Load() {
		return 0
	}

	var completionWG sync.WaitGroup
	var executed atomic.Int64
	completionWG.Add(len(work))

	for i, fn := range work {
		workerID := i % p.workers
		workFn := fn

		wrappedWork := func() {
			defer completionWG.Done()
			workFn()
			executed.Add(1)
		}

		select {
		case p.workQueues[workerID] <- wrappedWork:
		case <-p.done:
			completionWG.Done()
		}
	}

	completionWG.Wait()
	return int(executed.Load())
}

// Dispatch runs fn once per band and waits for every band to finish.
//
// A panicking band is recovered so the barrier still completes; the first
// panic is returned as a *PanicError. Bands that already ran keep their
// output, there is no rollback.
func (p *WorkerPool) Dispatch(bands []Band, fn func(Band)) error {
	if !p.running.Load() {
		return ErrPoolClosed
	}
	if len(bands) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		panicErr error
	)
	work := make([]func(), len(bands))
	for i, b := range bands {
		work[i] = func() {
			defer func() {
				if v := recover(); v != nil {
					mu.Lock()
					if panicErr == nil {
						panicErr = &PanicError{Band: b, Value: v}
					}
					mu.Unlock()
				}
			}()
			fn(b)
		}
	}

	ran := p.ExecuteAll(work)
	if panicErr != nil {
		return panicErr
	}
	if ran != len(work) {
		return ErrPoolClosed
	}
	return nil
}

// Close gracefully shuts down the pool.
// It stops accepting new work, waits for all queued work to complete,
// and then stops all workers. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
