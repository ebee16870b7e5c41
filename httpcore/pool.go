package httpcore

import (
	"net/http"
	"sync"
	"time"
)

// PooledHandle wraps one *http.Client/*http.Transport pair — the engine's
// stand-in for an opaque transport handle. A handle is owned by exactly one
// of: the ConnectionPool's free-list, a Session, or a multisession context.
type PooledHandle struct {
	Client    *http.Client
	Transport *http.Transport
}

func newPooledHandle() *PooledHandle {
	t := &http.Transport{
		MaxIdleConns:        500,
		MaxIdleConnsPerHost: 100,
		MaxConnsPerHost:     200,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &PooledHandle{
		Client:    &http.Client{Transport: t},
		Transport: t,
	}
}

// reset restores a handle to a clean state before reuse, playing
// curl_easy_reset's role: drop idle connections and any redirect override
// the previous request installed.
func (h *PooledHandle) reset() {
	h.Transport.CloseIdleConnections()
	h.Client.CheckRedirect = nil
	h.Client.Timeout = 0
}

func (h *PooledHandle) destroy() {
	h.Transport.CloseIdleConnections()
}

// ConnectionPool is a bounded LIFO free-list of *PooledHandle. The only
// invariant is |pool| ≤ max; max == 0 means acquire always builds a fresh
// handle and release always destroys it.
type ConnectionPool struct {
	mu      sync.Mutex
	free    []*PooledHandle
	max     int
}

// NewConnectionPool returns a pool that keeps at most max idle handles.
func NewConnectionPool(max int) *ConnectionPool {
	return &ConnectionPool{max: max}
}

// Acquire pops a handle from the free-list, or creates a fresh one if the
// list is empty.
func (p *ConnectionPool) Acquire() *PooledHandle {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		h := p.free[n-1]
		p.free = p.free[:n-1]
		return h
	}
	return newPooledHandle()
}

// Release resets handle and returns it to the free-list, unless the list is
// already at capacity, in which case the handle is destroyed.
func (p *ConnectionPool) Release(h *PooledHandle) {
	if h == nil {
		return
	}
	h.reset()

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) < p.max {
		p.free = append(p.free, h)
		return
	}
	h.destroy()
}

// Len reports the number of handles currently idle in the pool.
func (p *ConnectionPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Close destroys every pooled handle.
func (p *ConnectionPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range p.free {
		h.destroy()
	}
	p.free = nil
}
