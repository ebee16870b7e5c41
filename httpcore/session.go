package httpcore

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/firasghr/httpengine/httpcore/fingerprint"
)

// Cache is the subset of the response cache a Session needs. Defined here
// (rather than imported from package cache) so httpcore has no import-cycle
// on its own cache subpackage; httpcore/cache.Cache satisfies it.
type Cache interface {
	Get(url string) (*Response, bool)
	GetValidationHeaders(url string) []HeaderPair
	HandleNotModified(url string)
	Set(url string, resp *Response)
}

// ProgressFunc has the shape of curl's xferinfo callback: total/now for
// download and upload respectively. No transfer path in this package calls
// it (see SetProgressCallback).
type ProgressFunc func(downloadTotal, downloadNow, uploadTotal, uploadNow int64) error

// Observer receives counters for cache and rate-limiter activity. It is
// defined locally (rather than importing package metrics) for the same
// reason as Cache: metrics.Metrics satisfies it without httpcore taking a
// dependency on the metrics package.
type Observer interface {
	IncrementCacheHit()
	IncrementCacheMiss()
	IncrementRateLimiterWait()
}

// Session is the fundamental unit of execution: one owned transport handle
// plus the optional cache, rate limiter and interceptors layered around it.
// A Session is not safe for concurrent use: every request resets and
// reconfigures the one handle's client and transport, so a Session must not
// run requests from several goroutines at once without external
// serialization.
type Session struct {
	handle       *PooledHandle
	pool         *ConnectionPool
	cache        Cache
	rateLimiter  *RateLimiter
	interceptors []Interceptor
	progress     ProgressFunc
	observer     Observer
}

// NewSession returns a standalone Session owning a freshly built handle.
func NewSession() *Session {
	return &Session{handle: newPooledHandle()}
}

// NewSessionFromPool returns a Session whose handle is acquired from pool.
// Close releases the handle back to the pool instead of destroying it.
func NewSessionFromPool(pool *ConnectionPool) *Session {
	return &Session{handle: pool.Acquire(), pool: pool}
}

// Close releases the session's handle: back to the pool if it came from
// one, or destroyed outright otherwise. The Session must not be used again.
func (s *Session) Close() {
	if s.handle == nil {
		return
	}
	if s.pool != nil {
		s.pool.Release(s.handle)
	} else {
		s.handle.destroy()
	}
	s.handle = nil
}

// AddInterceptor registers a session-level interceptor. Session interceptors
// run before any per-request interceptor, in registration order.
func (s *Session) AddInterceptor(i Interceptor) {
	s.interceptors = append(s.interceptors, i)
}

// SetCache installs c as the GET response cache. Pass nil to disable
// caching.
func (s *Session) SetCache(c Cache) { s.cache = c }

// SetRateLimiter installs rl as the session's rate limiter. Pass nil to
// disable rate limiting.
func (s *Session) SetRateLimiter(rl *RateLimiter) { s.rateLimiter = rl }

// SetProgressCallback stores fn on the Session. No transfer path (Execute,
// Download, Upload) calls it, so it has no effect on transfers.
func (s *Session) SetProgressCallback(fn ProgressFunc) { s.progress = fn }

// SetObserver installs o to receive cache hit/miss and rate-limiter-wait
// counts. Pass nil to disable (the default).
func (s *Session) SetObserver(o Observer) { s.observer = o }

// Execute runs req through the full pipeline: cache lookup/validation for
// GET requests, then the retrying transport call, then cache population.
func (s *Session) Execute(req *Request) (*Response, error) {
	if s.cache != nil && req.Method == MethodGET {
		return s.executeCached(req)
	}
	return s.executeInternal(req)
}

func (s *Session) executeCached(req *Request) (*Response, error) {
	if cached, ok := s.cache.Get(req.URL); ok {
		if s.observer != nil {
			s.observer.IncrementCacheHit()
		}
		return cached, nil
	}
	if s.observer != nil {
		s.observer.IncrementCacheMiss()
	}

	modified := req.Clone()
	for _, h := range s.cache.GetValidationHeaders(req.URL) {
		modified.Header(h.Name, h.Value)
	}

	resp, err := s.executeInternal(modified)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified {
		s.cache.HandleNotModified(req.URL)
		if cached, ok := s.cache.Get(req.URL); ok {
			return cached, nil
		}
		return resp, nil
	}
	if resp.OK() {
		s.cache.Set(req.URL, resp)
	}
	return resp, nil
}

// ExecuteAsync runs Execute in its own goroutine and returns a channel that
// receives exactly one result.
func (s *Session) ExecuteAsync(req *Request) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	go func() {
		resp, err := s.Execute(req)
		out <- AsyncResult{Response: resp, Err: err}
	}()
	return out
}

// AsyncResult is the payload delivered on an ExecuteAsync channel.
type AsyncResult struct {
	Response *Response
	Err      error
}

func (s *Session) executeInternal(req *Request) (*Response, error) {
	// Close a multipart form once, so every attempt sends the same body.
	if req.MultipartForm != nil {
		body, ct, err := req.MultipartForm.Close()
		if err != nil {
			return nil, NewTransportFailure(0, err.Error(), err)
		}
		req = req.Clone()
		req.MultipartForm = nil
		req.Body = body
		headers := make([]HeaderPair, 0, len(req.Headers)+1)
		for _, h := range req.Headers {
			if !canonicalEqual(h.Name, "Content-Type") {
				headers = append(headers, h)
			}
		}
		req.Headers = append(headers, HeaderPair{Name: "Content-Type", Value: ct})
	}
	return s.retryLoop(req, func() (*Response, error) { return s.performOnce(req) })
}

// executeStreaming runs req through the same pipeline as executeInternal
// but writes the response body directly to sink instead of buffering it,
// for Download's benefit. The returned Response's Body is always empty.
func (s *Session) executeStreaming(req *Request, sink io.Writer) (*Response, error) {
	return s.retryLoop(req, func() (*Response, error) { return s.performOnceStreaming(req, sink) })
}

func (s *Session) retryLoop(req *Request, attempt func() (*Response, error)) (*Response, error) {
	if s.rateLimiter != nil {
		if s.observer != nil {
			s.observer.IncrementRateLimiterWait()
		}
		if err := s.rateLimiter.Wait(context.Background()); err != nil {
			return nil, err
		}
	}

	retriesLeft := req.Retries
	for {
		resp, err := attempt()
		if err == nil {
			return resp, nil
		}
		if retriesLeft > 0 && req.RetryOnError {
			retriesLeft--
			time.Sleep(req.RetryDelay)
			continue
		}
		return nil, err
	}
}

func (s *Session) performOnce(req *Request) (*Response, error) {
	httpResp, body, err := s.doOnce(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		if te, ok := err.(*TransportError); ok {
			return nil, te
		}
		return nil, NewTransportFailure(0, "read response body: "+err.Error(), err)
	}

	resp := NewResponse(httpResp.StatusCode, raw, headersFromHTTP(httpResp.Header))
	return s.finishResponse(req, resp)
}

// performOnceStreaming is performOnce's counterpart for Download: instead of
// accumulating the body in memory, it copies straight to sink and returns a
// Response whose Body is empty — the bytes' only home is sink.
func (s *Session) performOnceStreaming(req *Request, sink io.Writer) (*Response, error) {
	httpResp, body, err := s.doOnce(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if _, err := io.Copy(sink, body); err != nil {
		if te, ok := err.(*TransportError); ok {
			return nil, te
		}
		return nil, NewTransportFailure(0, "stream response body: "+err.Error(), err)
	}

	resp := NewResponse(httpResp.StatusCode, nil, headersFromHTTP(httpResp.Header))
	return s.finishResponse(req, resp)
}

// doOnce performs validation, interceptors, and the actual network round
// trip shared by performOnce and performOnceStreaming. The returned reader
// already has any low-speed monitoring applied; the caller still owns
// closing httpResp.Body.
func (s *Session) doOnce(req *Request) (*http.Response, io.Reader, error) {
	s.handle.reset()

	if err := req.Validate(); err != nil {
		return nil, nil, NewTransportFailure(0, err.Error(), err)
	}

	if err := s.runBeforeInterceptors(req); err != nil {
		return nil, nil, err
	}

	httpReq, err := s.buildHTTPRequest(req)
	if err != nil {
		return nil, nil, NewTransportFailure(0, err.Error(), err)
	}

	s.applyClientOptions(req)

	httpResp, err := s.handle.Client.Do(httpReq)
	if err != nil {
		return nil, nil, NewTransportFailure(0, err.Error(), err)
	}

	var body io.Reader = httpResp.Body
	if req.LowSpeedLimit != nil && req.LowSpeedTime != nil {
		body = newLowSpeedReader(httpResp.Body, *req.LowSpeedLimit, *req.LowSpeedTime)
	}
	return httpResp, body, nil
}

func (s *Session) finishResponse(req *Request, resp *Response) (*Response, error) {
	if req.CookieJar != nil {
		domain := hostOf(req.URL)
		req.CookieJar.ParseCookiesFromHeaders(resp.Headers, domain)
	}
	if err := s.runAfterInterceptors(req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Session) runBeforeInterceptors(req *Request) error {
	for _, i := range s.interceptors {
		if err := i.BeforeRequest(s.handle, req); err != nil {
			return err
		}
	}
	for _, i := range req.Interceptors {
		if err := i.BeforeRequest(s.handle, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) runAfterInterceptors(req *Request, resp *Response) error {
	for _, i := range s.interceptors {
		if err := i.AfterResponse(s.handle, req, resp); err != nil {
			return err
		}
	}
	for _, i := range req.Interceptors {
		if err := i.AfterResponse(s.handle, req, resp); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) buildHTTPRequest(req *Request) (*http.Request, error) {
	var body io.Reader
	contentType := ""

	switch {
	case req.MultipartForm != nil:
		b, ct, err := req.MultipartForm.Close()
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
		contentType = ct
	case len(req.Body) > 0:
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequest(string(req.Method), req.URL, body)
	if err != nil {
		return nil, err
	}

	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.UserAgent != nil {
		httpReq.Header.Set("User-Agent", *req.UserAgent)
	}
	if req.AcceptEncoding != nil {
		httpReq.Header.Set("Accept-Encoding", *req.AcceptEncoding)
	}
	for _, c := range req.Cookies {
		httpReq.Header.Add("Cookie", c.String())
	}
	if req.Username != nil && req.Password != nil {
		httpReq.SetBasicAuth(*req.Username, *req.Password)
	}
	if req.ResumeFrom != nil {
		httpReq.Header.Set("Range", fmt.Sprintf("bytes=%d-", *req.ResumeFrom))
	}

	ctx := httpReq.Context()
	if req.Timeout != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *req.Timeout)
		_ = cancel // request lifetime is bounded by Client.Do returning; cancel is released with the context tree
	}
	return httpReq.WithContext(ctx), nil
}

func (s *Session) applyClientOptions(req *Request) {
	if req.ImpersonateChrome {
		fingerprint.Apply(s.handle.Client)
	} else {
		s.handle.Client.Transport = s.handle.Transport
	}

	t := s.handle.Transport
	t.TLSClientConfig = tlsConfigFor(req)
	applyHTTPVersion(t, req.HTTPVersion)

	if req.ConnectTimeout != nil {
		t.DialContext = dialerWithTimeout(*req.ConnectTimeout)
	}

	if req.ProxyURL != nil {
		if pu, err := url.Parse(proxyURLWithAuth(req)); err == nil {
			applyProxyKind(pu, req.ProxyKind)
			t.Proxy = http.ProxyURL(pu)
		}
	} else {
		t.Proxy = http.ProxyFromEnvironment
	}

	if req.FollowRedirects {
		maxRedirects := 10
		if req.MaxRedirects != nil {
			maxRedirects = *req.MaxRedirects
		}
		s.handle.Client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		}
	} else {
		s.handle.Client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

// applyHTTPVersion configures t to honor a Request's protocol preference.
// HTTPVersion1 disables the transport's automatic HTTP/2 upgrade;
// HTTPVersion2 installs golang.org/x/net/http2 explicitly rather than
// relying on ALPN defaults. HTTPVersion3 has no effect: no HTTP/3 (QUIC)
// client library is wired into this module, so it remains a builder-only
// preference recorded on the Request (see DESIGN.md).
func applyHTTPVersion(t *http.Transport, v HTTPVersion) {
	switch v {
	case HTTPVersion1:
		t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	case HTTPVersion2:
		t.TLSNextProto = nil
		_ = http2.ConfigureTransport(t)
	default:
		t.TLSNextProto = nil
	}
}

// applyProxyKind rewrites pu's scheme to match kind. SOCKS5 is natively
// supported by net/http's Transport.Proxy dialing; SOCKS4 has no client in
// this module's dependency set (none of the example repos carry one), so it
// is treated as SOCKS5 rather than silently ignored.
func applyProxyKind(pu *url.URL, kind *ProxyKind) {
	if kind == nil {
		return
	}
	switch *kind {
	case ProxyHTTP:
		if pu.Scheme == "" {
			pu.Scheme = "http"
		}
	case ProxySOCKS4, ProxySOCKS5:
		pu.Scheme = "socks5"
	}
}

func proxyURLWithAuth(req *Request) string {
	if req.ProxyUsername == nil || req.ProxyPassword == nil {
		return *req.ProxyURL
	}
	pu, err := url.Parse(*req.ProxyURL)
	if err != nil {
		return *req.ProxyURL
	}
	pu.User = url.UserPassword(*req.ProxyUsername, *req.ProxyPassword)
	return pu.String()
}

func hostOf(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func headersFromHTTP(h http.Header) []HeaderPair {
	out := make([]HeaderPair, 0, len(h))
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			out = append(out, HeaderPair{Name: k, Value: v})
		}
	}
	return out
}

// Get executes a plain GET request.
func (s *Session) Get(rawurl string) (*Response, error) {
	req := NewRequest().SetMethod(MethodGET).SetURL(rawurl)
	return s.Execute(req)
}

// GetWithParams executes a GET request with params appended to rawurl's
// query string, sorted by key for deterministic output.
func (s *Session) GetWithParams(rawurl string, params map[string]string) (*Response, error) {
	full := rawurl
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawurl, "?") {
			sep = "&"
		}
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
		}
		full = rawurl + sep + strings.Join(parts, "&")
	}
	return s.Get(full)
}

// Post executes a POST request with the given body and Content-Type.
func (s *Session) Post(rawurl string, body []byte, contentType string) (*Response, error) {
	req := NewRequest().SetMethod(MethodPOST).SetURL(rawurl).SetBody(body).Header("Content-Type", contentType)
	return s.Execute(req)
}

// PostForm executes a POST request with params urlencoded as the body.
func (s *Session) PostForm(rawurl string, params map[string]string) (*Response, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	body := strings.Join(parts, "&")
	return s.Post(rawurl, []byte(body), "application/x-www-form-urlencoded")
}

// PostJSON executes a POST request with body sent as application/json.
func (s *Session) PostJSON(rawurl string, jsonBody []byte) (*Response, error) {
	return s.Post(rawurl, jsonBody, "application/json")
}

// Put executes a PUT request with the given body and Content-Type.
func (s *Session) Put(rawurl string, body []byte, contentType string) (*Response, error) {
	req := NewRequest().SetMethod(MethodPUT).SetURL(rawurl).SetBody(body).Header("Content-Type", contentType)
	return s.Execute(req)
}

// Delete executes a DELETE request.
func (s *Session) Delete(rawurl string) (*Response, error) {
	req := NewRequest().SetMethod(MethodDELETE).SetURL(rawurl)
	return s.Execute(req)
}

// Patch executes a PATCH request with the given body and Content-Type.
func (s *Session) Patch(rawurl string, body []byte, contentType string) (*Response, error) {
	req := NewRequest().SetMethod(MethodPATCH).SetURL(rawurl).SetBody(body).Header("Content-Type", contentType)
	return s.Execute(req)
}

// Head executes a HEAD request.
func (s *Session) Head(rawurl string) (*Response, error) {
	req := NewRequest().SetMethod(MethodHEAD).SetURL(rawurl)
	return s.Execute(req)
}

// Options executes an OPTIONS request.
func (s *Session) Options(rawurl string) (*Response, error) {
	req := NewRequest().SetMethod(MethodOPTIONS).SetURL(rawurl)
	return s.Execute(req)
}

// Download streams rawurl's body directly to path, optionally resuming from
// resumeFrom bytes (opens the file for append instead of truncation). Bytes
// are written to the file as they arrive rather than accumulated in memory;
// the returned Response's Body is always empty — the transfer's only
// observable side effect is the file on disk.
func (s *Session) Download(rawurl, path string, resumeFrom *int64) (*Response, error) {
	req := NewRequest().SetMethod(MethodGET).SetURL(rawurl)
	if resumeFrom != nil {
		req.SetResumeFrom(*resumeFrom)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("httpcore: create download directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE
	if resumeFrom != nil {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644) // #nosec G304 – caller-supplied download path
	if err != nil {
		return nil, fmt.Errorf("httpcore: open download target %q: %w", path, err)
	}
	defer f.Close()

	return s.executeStreaming(req, f)
}

// Upload posts path as a multipart file field named fieldName.
func (s *Session) Upload(rawurl, path, fieldName string, resumeFrom *int64) (*Response, error) {
	form := NewMultipartForm()
	if err := form.AddFile(fieldName, path); err != nil {
		return nil, err
	}

	req := NewRequest().SetMethod(MethodPOST).SetURL(rawurl).SetMultipartForm(form)
	if resumeFrom != nil {
		req.SetResumeFrom(*resumeFrom)
	}
	return s.Execute(req)
}

// URLEncode percent-encodes s for use in a query string.
func URLEncode(s string) string { return url.QueryEscape(s) }

// URLDecode reverses URLEncode, returning s unchanged if it cannot be
// decoded.
func URLDecode(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// RawConn hands off the underlying handle's dial for protocols Session
// itself doesn't speak (e.g. a caller bootstrapping a WebSocket upgrade).
// The caller owns the returned connection and must close it.
func (s *Session) RawConn(ctx context.Context, network, addr string) (io.ReadWriteCloser, error) {
	dialer := s.handle.Transport.DialContext
	if dialer == nil {
		dialer = defaultDialContext
	}
	conn, err := dialer(ctx, network, addr)
	if err != nil {
		return nil, NewTransportFailure(0, "raw dial: "+err.Error(), err)
	}
	rwc, ok := conn.(io.ReadWriteCloser)
	if !ok {
		conn.Close()
		return nil, NewTransportFailure(0, "raw dial: connection does not support read/write/close", nil)
	}
	return rwc, nil
}
