package biquad

import (
	"fmt"
	"sync"
)

// Allocator provides sample storage for sound buffers.
//
// Allocation is threaded explicitly through buffer construction instead of
// being a process-wide setting, so each call site decides how its storage is
// obtained and tests can inject failures per call.
type Allocator interface {
	// Alloc returns storage for exactly n samples. The contents are
	// unspecified; callers that need silence must clear it.
	Alloc(n int) ([]Sample, error)

	// Free returns storage previously obtained from Alloc.
	Free(samples []Sample)
}

// HeapAllocator allocates from the Go heap. It never fails.
type HeapAllocator struct{}

// Alloc implements Allocator.
func (HeapAllocator) Alloc(n int) ([]Sample, error) {
	return make([]Sample, n), nil
}

// Free implements Allocator. Heap storage is reclaimed by the garbage collector.
func (HeapAllocator) Free([]Sample) {}

// DefaultAllocator is used wherever a nil Allocator is supplied.
var DefaultAllocator Allocator = HeapAllocator{}

// allocatorOrDefault resolves a possibly nil allocator.
func allocatorOrDefault(a Allocator) Allocator {
	if a == nil {
		return DefaultAllocator
	}
	return a
}

// LimitedAllocator enforces a budget on the number of live samples.
// Requests that would exceed the budget fail with ErrAllocation.
// It is safe for concurrent use.
type LimitedAllocator struct {
	mu    sync.Mutex
	limit int
	used  int
}

// NewLimitedAllocator creates an allocator that hands out at most limit
// samples at any one time.
func NewLimitedAllocator(limit int) *LimitedAllocator {
	return &LimitedAllocator{limit: limit}
}

// Alloc implements Allocator.
func (a *LimitedAllocator) Alloc(n int) ([]Sample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n > a.limit-a.used {
		return nil, fmt.Errorf("%w: requested %d samples, %d of %d available",
			ErrAllocation, n, a.limit-a.used, a.limit)
	}
	a.used += n
	return make([]Sample, n), nil
}

// Free implements Allocator.
func (a *LimitedAllocator) Free(samples []Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.used -= len(samples)
	if a.used < 0 {
		a.used = 0
	}
}

// InUse returns the number of samples currently handed out.
func (a *LimitedAllocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// PooledAllocator recycles sample storage through a sync.Pool.
// Streaming callers that process equally sized chunks avoid one heap
// allocation per chunk. Recycled storage is not cleared.
type PooledAllocator struct {
	pool sync.Pool
}

// NewPooledAllocator creates an empty pooled allocator.
func NewPooledAllocator() *PooledAllocator {
	return &PooledAllocator{}
}

// Alloc implements Allocator.
func (a *PooledAllocator) Alloc(n int) ([]Sample, error) {
	if v, ok := a.pool.Get().(*[]Sample); ok && cap(*v) >= n {
		return (*v)[:n], nil
	}
	return make([]Sample, n), nil
}

// Free implements Allocator.
func (a *PooledAllocator) Free(samples []Sample) {
	if cap(samples) == 0 {
		return
	}
	samples = samples[:cap(samples)]
	a.pool.Put(&samples)
}
