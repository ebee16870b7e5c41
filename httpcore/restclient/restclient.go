// Package restclient is the engine's top-level façade: a base-URL-aware
// client built on one default Session, wired with a logging interceptor,
// a rate limiter and a response cache, so callers who don't need the
// lower-level httpcore pieces can make one call and get sane defaults.
package restclient

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/firasghr/httpengine/httpcore"
	"github.com/firasghr/httpengine/httpcore/cache"
)

// defaultSession is the package-level Session every top-level helper
// function (Get, Post, ...) uses, lazily constructed once. This is the
// Go-idiomatic stand-in for the source's thread-local default session: Go
// has no goroutine-local storage, so one shared, concurrency-safe Session
// takes its place instead of a fake-and-fragile goroutine-keyed map.
var (
	defaultOnce    sync.Once
	defaultSession *Client
)

func defaultClient() *Client {
	defaultOnce.Do(func() {
		defaultSession = New(Config{})
	})
	return defaultSession
}

// Config configures a Client's defaults.
type Config struct {
	// BaseURL, if set, is prepended to every relative path passed to the
	// Client's convenience methods.
	BaseURL string

	// RateLimit caps outgoing requests per second. Zero or negative falls
	// back to the standing default of 10 req/s; there is no way to disable
	// the rate limiter entirely, matching the façade's "always-on" defaults.
	RateLimit float64

	// CacheTTL is the default freshness window for cached GET responses.
	// Zero or negative falls back to the standing default of 5 minutes.
	CacheTTL time.Duration

	// CacheSize bounds the number of fresh cache entries held at once.
	// Zero or negative falls back to the standing default of 1024 entries.
	CacheSize int

	// Logger receives one Info entry per request/response pair. Defaults to
	// zap.NewNop() (silent) when nil.
	Logger *zap.Logger
}

// Client wraps one httpcore.Session with a base URL and the ambient
// logging/cache/rate-limit stack.
type Client struct {
	session *httpcore.Session
	baseURL string
}

// defaultRateLimit and defaultCacheTTL/defaultCacheSize are the façade's
// standing defaults: a Client always holds a cache and a rate limiter
// unless the caller overrides them, matching the source's "configured to
// 10 req/s" out-of-the-box behavior.
const (
	defaultRateLimit = 10.0
	defaultCacheTTL  = 5 * time.Minute
	defaultCacheSize = 1024
)

// New builds a Client per cfg. A Client always carries a logging
// interceptor, a rate limiter and a response cache — cfg only overrides
// their settings, it never turns them off.
func New(cfg Config) *Client {
	session := httpcore.NewSession()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	session.AddInterceptor(loggingInterceptor{log: logger})

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	session.SetRateLimiter(httpcore.NewRateLimiter(rateLimit))

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	session.SetCache(cache.New(cacheSize, cacheTTL))

	return &Client{session: session, baseURL: strings.TrimRight(cfg.BaseURL, "/")}
}

func (c *Client) resolve(path string) string {
	if c.baseURL == "" || strings.Contains(path, "://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Session exposes the underlying Session for callers who need the full
// builder API (custom headers, multipart, interceptors, ...).
func (c *Client) Session() *httpcore.Session { return c.session }

func (c *Client) Get(path string) (*httpcore.Response, error) {
	return c.session.Get(c.resolve(path))
}

func (c *Client) Post(path string, body []byte, contentType string) (*httpcore.Response, error) {
	return c.session.Post(c.resolve(path), body, contentType)
}

func (c *Client) PostJSON(path string, jsonBody []byte) (*httpcore.Response, error) {
	return c.session.PostJSON(c.resolve(path), jsonBody)
}

func (c *Client) Put(path string, body []byte, contentType string) (*httpcore.Response, error) {
	return c.session.Put(c.resolve(path), body, contentType)
}

func (c *Client) Delete(path string) (*httpcore.Response, error) {
	return c.session.Delete(c.resolve(path))
}

// Get issues a GET through the package-level default Client.
func Get(url string) (*httpcore.Response, error) { return defaultClient().Get(url) }

// Post issues a POST through the package-level default Client.
func Post(url string, body []byte, contentType string) (*httpcore.Response, error) {
	return defaultClient().Post(url, body, contentType)
}

// Put issues a PUT through the package-level default Client.
func Put(url string, body []byte, contentType string) (*httpcore.Response, error) {
	return defaultClient().Put(url, body, contentType)
}

// Delete issues a DELETE through the package-level default Client.
func Delete(url string) (*httpcore.Response, error) { return defaultClient().Delete(url) }

// loggingInterceptor logs one structured entry per request/response pair,
// grounded in the engine's existing leveled logger package but expressed
// with zap since restclient sits at the ambient-observability edge of the
// module, where the rest of the pack reaches for zap.
type loggingInterceptor struct {
	log *zap.Logger
}

func (l loggingInterceptor) BeforeRequest(_ *httpcore.PooledHandle, req *httpcore.Request) error {
	l.log.Debug("httpcore request", zap.String("method", string(req.Method)), zap.String("url", req.URL))
	return nil
}

func (l loggingInterceptor) AfterResponse(_ *httpcore.PooledHandle, req *httpcore.Request, resp *httpcore.Response) error {
	l.log.Info("httpcore response",
		zap.String("method", string(req.Method)),
		zap.String("url", req.URL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
	)
	return nil
}
