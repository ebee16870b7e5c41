package httpcore

import "sync"

// SessionPool is a bounded LIFO free-list of *Session, the same shape as
// ConnectionPool one layer up: Acquire pops a free Session when one is
// resting in the list, or builds a fresh one (backed by the shared
// ConnectionPool) otherwise; Release pushes the Session back onto the list
// for reuse instead of closing it. Acquire additionally blocks once max
// Sessions are checked out at once, bounding concurrency the way
// ConnectionPool's max bounds idle retention.
type SessionPool struct {
	mu     sync.Mutex
	conns  *ConnectionPool
	free   []*Session
	max    int
	inUse  int
	waitCh chan struct{}
}

// NewSessionPool returns a pool that allows at most max Sessions checked
// out at once, each backed by a handle from conns.
func NewSessionPool(conns *ConnectionPool, max int) *SessionPool {
	return &SessionPool{conns: conns, max: max, waitCh: make(chan struct{}, max)}
}

// Acquire blocks until a Session slot is free, then returns a Session —
// popped from the free-list when one is resting there, freshly built from
// the shared ConnectionPool otherwise. Release must be called exactly once
// per successful Acquire.
func (p *SessionPool) Acquire() *Session {
	p.waitCh <- struct{}{}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse++

	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free = p.free[:n-1]
		return s
	}
	return NewSessionFromPool(p.conns)
}

// Release returns s to the free-list for the next Acquire to reuse, and
// frees its slot in the pool.
func (p *SessionPool) Release(s *Session) {
	p.mu.Lock()
	p.inUse--
	if p.max > 0 {
		p.free = append(p.free, s)
	} else {
		s.Close()
	}
	p.mu.Unlock()
	<-p.waitCh
}

// InUse reports how many Sessions are currently checked out.
func (p *SessionPool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Len reports the number of Sessions currently idle in the free-list.
func (p *SessionPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Close closes every Session resting in the free-list.
func (p *SessionPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.free {
		s.Close()
	}
	p.free = nil
}
