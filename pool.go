package img2pdf

import (
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinWorkers ensures at least one converter is available.
	MinWorkers = 1

	// MaxWorkers caps the conversion pool; decode and encode are pure
	// CPU and scale poorly past the physical core count.
	MaxWorkers = 8

	// cpuDivisor leaves headroom for the download side of the pipeline.
	cpuDivisor = 2
)

// renderPool manages renderers for parallel conversion. Renderers are
// created lazily on first acquire so short runs never allocate the full
// set of scratch buffers.
type renderPool struct {
	size    int
	sem     chan *renderer
	mu      sync.Mutex
	created int
	closed  bool
}

func newRenderPool(n int) *renderPool {
	if n < 1 {
		n = 1
	}

	return &renderPool{
		size: n,
		sem:  make(chan *renderer, n),
	}
}

// Acquire gets a renderer from the pool, creating one if capacity
// allows. Blocks if all renderers are in use.
func (p *renderPool) Acquire() *renderer {
	// Try to get an existing renderer (non-blocking)
	select {
	case r := <-p.sem:
		return r
	default:
	}

	// Check if we can create a new renderer
	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()
		return newRenderer()
	}
	p.mu.Unlock()

	// All renderers created, wait for one to be released
	return <-p.sem
}

// Release returns a renderer to the pool. No-op after Close.
func (p *renderPool) Release(r *renderer) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.sem <- r
}

// Close retires the pool. Renderers hold only heap scratch buffers, so
// there is nothing further to release.
func (p *renderPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.sem)
}

// Size returns the pool capacity.
func (p *renderPool) Size() int {
	return p.size
}

// ResolveWorkers determines the conversion pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by CLIs that report the effective value.
func ResolveWorkers(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs in containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
