// Package session provides the Session type – the fundamental unit of the
// automation engine. Each session owns its own httpcore.Session (and so its
// own transport, cookie jar, cache and rate limiter) so it can operate fully
// independently of all other sessions.
package session

import (
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/firasghr/httpengine/config"
	"github.com/firasghr/httpengine/httpcore"
	"github.com/firasghr/httpengine/httpcore/cache"
)

// Session represents one independent automation session.
//
// Architecture notes:
//   - Each session holds its own *httpcore.Session so that connection pools,
//     cookie jars, caches and rate limiters are never shared between
//     sessions. This eliminates cross-session interference and makes the
//     engine behave predictably even at 2 000 concurrent sessions.
//   - A sync.RWMutex protects the mutable fields (Headers, State,
//     LastActivity) so callers may safely read/write from multiple goroutines.
//   - CreatedAt is set once at construction and never mutated; no lock is
//     needed to read it.
type Session struct {
	// ID uniquely identifies the session within the engine.
	ID int

	// Client is the underlying execution pipeline: transport, cache, rate
	// limiter and interceptors all live here. It must not be replaced after
	// construction; replace the whole Session instead.
	Client *httpcore.Session

	// CookieJar stores cookies for this session and is attached to every
	// request ExecuteRequest builds, so cookies are applied automatically.
	CookieJar *httpcore.CookieJar

	// Proxy is the proxy URL string used by this session, or empty for direct
	// connections. Applied to every request built by ExecuteRequest.
	Proxy string

	// Headers contains custom HTTP headers injected into every request made by
	// this session (e.g. User-Agent, Authorization).
	Headers map[string]string

	// State represents the current lifecycle state of the session.
	// Conventional values: "idle", "active", "closed".
	State string

	// CreatedAt records the wall-clock time the session was constructed.
	CreatedAt time.Time

	// LastActivity records the wall-clock time of the most-recent request.
	// Updated automatically by ExecuteRequest; may also be called manually
	// via UpdateLastActivity.
	LastActivity time.Time

	timeout time.Duration
	mu      sync.RWMutex // guards Headers, State, LastActivity
}

// NewSession constructs a Session with a dedicated httpcore.Session
// configured according to cfg. proxy may be an empty string for direct
// connections.
//
// Returns an error if cfg is nil or proxy cannot be parsed as a URL.
func NewSession(id int, proxy string, cfg *config.Config) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("session %d: config must not be nil", id)
	}
	if proxy != "" {
		if _, err := url.Parse(proxy); err != nil {
			return nil, fmt.Errorf("session %d: parse proxy URL %q: %w", id, proxy, err)
		}
	}

	engine := httpcore.NewSession()
	if cfg.RateLimitPerSecond > 0 {
		engine.SetRateLimiter(httpcore.NewRateLimiter(cfg.RateLimitPerSecond))
	}
	if cfg.CacheTTL > 0 {
		size := cfg.CacheSize
		if size <= 0 {
			size = 1024
		}
		engine.SetCache(cache.New(size, cfg.CacheTTL))
	}

	now := time.Now()
	return &Session{
		ID:           id,
		Client:       engine,
		CookieJar:    httpcore.NewCookieJar(),
		Proxy:        proxy,
		Headers:      make(map[string]string),
		State:        "idle",
		CreatedAt:    now,
		LastActivity: now,
		timeout:      cfg.RequestTimeout,
	}, nil
}

// ExecuteRequest sends an HTTP request through the full httpcore pipeline
// (cache, rate limiting, cookies, interceptors, retries) and returns the
// response.
//
// The method is safe for concurrent use: it acquires a read-lock to snapshot
// the current headers before building the request, and calls
// UpdateLastActivity (which acquires a write-lock) after the request
// completes.
func (s *Session) ExecuteRequest(method, targetURL string, body io.Reader) (*httpcore.Response, error) {
	var payload []byte
	if body != nil {
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("session %d: read request body: %w", s.ID, err)
		}
		payload = b
	}

	req := httpcore.NewRequest().
		SetMethod(httpcore.Method(method)).
		SetURL(targetURL).
		SetBody(payload).
		SetCookieJar(s.CookieJar)

	if s.timeout > 0 {
		req.SetTimeout(s.timeout)
	}
	if s.Proxy != "" {
		req.SetProxy(s.Proxy)
	}

	s.mu.RLock()
	for k, v := range s.Headers {
		req.Header(k, v)
	}
	s.mu.RUnlock()

	resp, err := s.Client.Execute(req)
	if err != nil {
		return nil, fmt.Errorf("session %d: execute %s %s: %w", s.ID, method, targetURL, err)
	}

	s.UpdateLastActivity()
	return resp, nil
}

// UpdateLastActivity records the current time as the session's last activity
// timestamp. Call this whenever work is performed on the session outside of
// ExecuteRequest (e.g. after processing a response body).
func (s *Session) UpdateLastActivity() {
	s.mu.Lock()
	s.LastActivity = time.Now()
	s.mu.Unlock()
}

// Close transitions the session to the "closed" state and releases its
// transport resources.
func (s *Session) Close() {
	s.mu.Lock()
	s.State = "closed"
	s.mu.Unlock()

	s.Client.Close()
}
