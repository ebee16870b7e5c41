package httpcore_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firasghr/httpengine/httpcore"
	"github.com/firasghr/httpengine/httpcore/cache"
)

func TestSession_Get_BasicRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()

	resp, err := s.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.OK() || string(resp.Body) != "hello" {
		t.Errorf("got status=%d body=%q", resp.StatusCode, resp.Body)
	}
}

func TestSession_Cache_HitAvoidsSecondRequest(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("cached"))
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()
	s.SetCache(cache.New(10, time.Minute))

	if _, err := s.Get(srv.URL); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if _, err := s.Get(srv.URL); err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected exactly 1 network hit (second served from cache), got %d", hits)
	}
}

func TestSession_Cache_RevalidatesOn304(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fresh body"))
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()
	s.SetCache(cache.New(10, 50*time.Millisecond)) // short TTL; the sleep below forces revalidation

	first, err := s.Get(srv.URL)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if string(first.Body) != "fresh body" {
		t.Fatalf("unexpected first body: %q", first.Body)
	}
	time.Sleep(100 * time.Millisecond) // let the cached entry expire

	second, err := s.Get(srv.URL)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if string(second.Body) != "fresh body" {
		t.Errorf("expected revalidated response to still carry the cached body, got %q", second.Body)
	}
	if hits != 2 {
		t.Errorf("expected 2 network round-trips (fetch + revalidate), got %d", hits)
	}
}

func TestSession_Retry_OnTransportError(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			// Force a connection-level failure by hijacking and closing
			// without a response, which surfaces as a transport error.
			hj, ok := w.(http.Hijacker)
			if ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()

	req := httpcore.NewRequest().SetURL(srv.URL).SetMethod(httpcore.MethodGET).
		SetRetries(5).SetRetryDelay(5 * time.Millisecond).SetRetryOnError(true)

	resp, err := s.Execute(req)
	if err != nil {
		t.Fatalf("Execute after retries: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("expected eventual success body %q, got %q", "ok", resp.Body)
	}
	if attempts < 3 {
		t.Errorf("expected at least 3 attempts, got %d", attempts)
	}
}

func TestSession_CookieJar_PopulatedFromSetCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "sid=abc123; Path=/")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()
	jar := httpcore.NewCookieJar()

	req := httpcore.NewRequest().SetURL(srv.URL).SetMethod(httpcore.MethodGET).SetCookieJar(jar)
	if _, err := s.Execute(req); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	c, ok := jar.GetCookie("sid")
	if !ok || c.Value != "abc123" {
		t.Errorf("expected sid=abc123 installed in jar, got (%+v, %v)", c, ok)
	}
}

func TestSession_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()

	resp, err := s.PostJSON(srv.URL, []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status: got %d, want 201", resp.StatusCode)
	}
}

func TestSession_Execute_RejectsInvalidRequest(t *testing.T) {
	var hit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()

	cert := "cert.pem"
	req := httpcore.NewRequest().SetURL(srv.URL).SetMethod(httpcore.MethodGET)
	req.ClientCertPath = &cert // no matching ClientKeyPath: invalid per the builder invariant

	_, err := s.Execute(req)
	if err == nil {
		t.Fatal("expected Execute to reject an invalid Request")
	}
	te, ok := err.(*httpcore.TransportError)
	if !ok || te.Code != 0 {
		t.Errorf("expected a TransportError with code 0, got %#v", err)
	}
	if hit {
		t.Error("server should never be contacted for a Request that fails validation")
	}
}

func TestSession_Download_StreamsToFileWithEmptyBody(t *testing.T) {
	const payload = "the quick brown fox"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()

	path := filepath.Join(t.TempDir(), "out.bin")
	resp, err := s.Download(srv.URL, path, nil)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if len(resp.Body) != 0 {
		t.Errorf("expected Response.Body to be empty in streaming mode, got %q", resp.Body)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != payload {
		t.Errorf("downloaded file contents: got %q, want %q", got, payload)
	}
}

func TestSession_LowSpeed_AbortsSlowTransfer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("a"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte("b"))
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()

	req := httpcore.NewRequest().SetURL(srv.URL).SetMethod(httpcore.MethodGET).
		SetLowSpeed(1<<30, 10*time.Millisecond)

	_, err := s.Execute(req)
	if err == nil {
		t.Fatal("expected a low-speed abort error")
	}
	te, ok := err.(*httpcore.TransportError)
	if !ok {
		t.Fatalf("expected a *TransportError, got %#v", err)
	}
	if te.Code != 28 {
		t.Errorf("expected low-speed abort code 28, got %d", te.Code)
	}
}

func TestSession_RateLimiter_DelaysSecondCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := httpcore.NewSession()
	defer s.Close()
	s.SetRateLimiter(httpcore.NewRateLimiter(10)) // 100ms interval

	start := time.Now()
	if _, err := s.Get(srv.URL); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if _, err := s.Get(srv.URL); err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if time.Since(start) < 90*time.Millisecond {
		t.Errorf("expected rate limiter to delay the second call by ~100ms, elapsed %v", time.Since(start))
	}
}
