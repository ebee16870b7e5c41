// Package multisession fans a batch of requests out across a bounded
// worker pool and collects their results concurrently, playing the role
// MultiSession plays for curl's multi interface — but built on goroutines
// and channels instead of a manual multi_perform/multi_wait event loop.
package multisession

import (
	"sync"

	"github.com/rs/xid"

	"github.com/firasghr/httpengine/httpcore"
)

// Callback receives the response or error for one request added via
// AddRequest. Exactly one of resp/err is non-nil.
type Callback func(resp *httpcore.Response, err error)

type job struct {
	id       xid.ID
	request  *httpcore.Request
	callback Callback
}

// MultiSession runs a batch of requests concurrently against a shared
// Session pool, bounding concurrency to workerCount in-flight transfers at
// once — the Go analogue of curl_multi's event loop, without needing to
// poll file descriptors by hand.
type MultiSession struct {
	pool        *httpcore.SessionPool
	workerCount int

	mu   sync.Mutex
	jobs []job
}

// New returns a MultiSession drawing Sessions from pool, running at most
// workerCount requests at once.
func New(pool *httpcore.SessionPool, workerCount int) *MultiSession {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &MultiSession{pool: pool, workerCount: workerCount}
}

// AddRequest queues request for execution; callback fires once Perform
// drains the batch. The returned ID identifies this job within the batch
// for logging/correlation purposes.
func (m *MultiSession) AddRequest(request *httpcore.Request, callback Callback) xid.ID {
	id := xid.New()
	m.mu.Lock()
	m.jobs = append(m.jobs, job{id: id, request: request, callback: callback})
	m.mu.Unlock()
	return id
}

// Perform executes every queued request, honoring the worker-count bound,
// and blocks until all callbacks have run. The queue is drained and reset
// so the same MultiSession can be reused for a subsequent batch.
func (m *MultiSession) Perform() {
	m.mu.Lock()
	pending := m.jobs
	m.jobs = nil
	m.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	queue := make(chan job, len(pending))
	for _, j := range pending {
		queue <- j
	}
	close(queue)

	var wg sync.WaitGroup
	workers := m.workerCount
	if workers > len(pending) {
		workers = len(pending)
	}
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := range queue {
				m.run(j)
			}
		}()
	}
	wg.Wait()
}

func (m *MultiSession) run(j job) {
	session := m.pool.Acquire()
	defer m.pool.Release(session)

	resp, err := session.Execute(j.request)
	if j.callback != nil {
		j.callback(resp, err)
	}
}

// Pending reports how many jobs are queued but not yet run.
func (m *MultiSession) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
