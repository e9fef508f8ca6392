package parallel

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}

	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		expected := runtime.GOMAXPROCS(0)
		if pool.Workers() != expected {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want %d (GOMAXPROCS)", n, pool.Workers(), expected)
		}
		pool.Close()
	}
}

// =============================================================================
// ExecuteAll Tests
// =============================================================================

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numTasks := 100

	work := make([]func(), numTasks)
	for i := range work {
		work[i] = func() {
			counter.Add(1)
		}
	}

	if ran := pool.ExecuteAll(work); ran != numTasks {
		t.Errorf("ExecuteAll() = %d, want %d", ran, numTasks)
	}
	if counter.Load() != int64(numTasks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if ran := pool.ExecuteAll(nil); ran != 0 {
		t.Errorf("ExecuteAll(nil) = %d, want 0", ran)
	}
}

// =============================================================================
// Dispatch Tests
// =============================================================================

func TestWorkerPool_DispatchCoversEveryRowOnce(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	const rows = 37
	hits := make([]int32, rows)

	err := pool.Dispatch(Split(rows, 7), func(b Band) {
		for r := b.Start; r < b.End; r++ {
			atomic.AddInt32(&hits[r], 1)
		}
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	for r, h := range hits {
		if h != 1 {
			t.Errorf("row %d visited %d times, want 1", r, h)
		}
	}
}

func TestWorkerPool_DispatchRecoversPanic(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var ran atomic.Int64
	err := pool.Dispatch(Split(8, 8), func(b Band) {
		if b.Start == 3 {
			panic("boom")
		}
		ran.Add(1)
	})

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("Dispatch() error = %v, want *PanicError", err)
	}
	if pe.Band != (Band{Start: 3, End: 4}) {
		t.Errorf("PanicError.Band = %+v, want [3,4)", pe.Band)
	}
	if pe.Value != "boom" {
		t.Errorf("PanicError.Value = %v, want boom", pe.Value)
	}
	if ran.Load() != 7 {
		t.Errorf("ran = %d, want 7 (other bands still run)", ran.Load())
	}

	// The pool stays usable after a recovered panic.
	if err := pool.Dispatch(Split(4, 2), func(Band) {}); err != nil {
		t.Errorf("Dispatch() after panic error = %v", err)
	}
}

func TestWorkerPool_DispatchEmpty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	called := false
	if err := pool.Dispatch(nil, func(Band) { called = true }); err != nil {
		t.Errorf("Dispatch(nil) error = %v", err)
	}
	if called {
		t.Error("fn called for empty band list")
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_Close(t *testing.T) {
	pool := NewWorkerPool(4)

	if !pool.IsRunning() {
		t.Error("Pool should be running before close")
	}

	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after close")
	}
}

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(4)

	// Multiple closes should not panic
	pool.Close()
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after close")
	}
}

func TestWorkerPool_OperationsAfterClose(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Close()

	var executed atomic.Bool

	if ran := pool.ExecuteAll([]func(){
		func() { executed.Store(true) },
	}); ran != 0 {
		t.Errorf("ExecuteAll() after Close = %d, want 0", ran)
	}
	err := pool.Dispatch([]Band{{0, 2}}, func(Band) { executed.Store(true) })
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Dispatch() after Close error = %v, want ErrPoolClosed", err)
	}

	// Give time for potential incorrect execution
	time.Sleep(50 * time.Millisecond)

	if executed.Load() {
		t.Error("Work was executed on closed pool")
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestWorkerPool_ConcurrentDispatch(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numGoroutines := 10
	rowsPerFrame := 64

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for g := 0; g < numGoroutines; g++ {
		go func() {
			defer wg.Done()
			err := pool.Dispatch(Plan(rowsPerFrame, pool.Workers()), func(b Band) {
				counter.Add(int64(b.Rows()))
			})
			if err != nil {
				t.Errorf("Dispatch() error = %v", err)
			}
		}()
	}

	wg.Wait()

	expected := int64(numGoroutines * rowsPerFrame)
	if counter.Load() != expected {
		t.Errorf("counter = %d, want %d", counter.Load(), expected)
	}
}

func TestWorkerPool_WorkStealing(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	// Uneven bands: every tenth one is slow.
	var fastCount, slowCount atomic.Int64

	err := pool.Dispatch(Split(100, 100), func(b Band) {
		if b.Start%10 == 0 {
			time.Sleep(10 * time.Millisecond)
			slowCount.Add(1)
			return
		}
		fastCount.Add(1)
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if slowCount.Load() != 10 {
		t.Errorf("slowCount = %d, want 10", slowCount.Load())
	}
	if fastCount.Load() != 90 {
		t.Errorf("fastCount = %d, want 90", fastCount.Load())
	}
}

func TestWorkerPool_NoGoroutineLeak(t *testing.T) {
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		pool := NewWorkerPool(4)
		_ = pool.Dispatch(Split(100, 16), func(Band) {})
		pool.Close()
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	final := runtime.NumGoroutine()

	// Allow for some variance (test framework goroutines, etc.)
	if final > baseline+2 {
		t.Errorf("goroutine count: baseline=%d, final=%d (leak detected)", baseline, final)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkWorkerPool_Dispatch1080p(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	bands := Plan(1080/2, pool.Workers())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pool.Dispatch(bands, func(Band) {})
	}
}
