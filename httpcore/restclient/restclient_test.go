package restclient_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/firasghr/httpengine/httpcore/restclient"
)

func TestClient_BaseURL_Resolution(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := restclient.New(restclient.Config{BaseURL: srv.URL})
	if _, err := c.Get("/widgets"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotPath != "/widgets" {
		t.Errorf("got path %q, want /widgets", gotPath)
	}
}

func TestClient_Get_AbsoluteURLBypassesBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := restclient.New(restclient.Config{BaseURL: "http://unused.invalid"})
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.OK() {
		t.Errorf("expected OK status, got %d", resp.StatusCode)
	}
}

func TestClient_CacheAndRateLimit_Configured(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := restclient.New(restclient.Config{CacheTTL: time.Minute, CacheSize: 10, RateLimit: 1000})
	if _, err := c.Get(srv.URL); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if _, err := c.Get(srv.URL); err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected cache to serve the second Get without a network hit, got %d hits", hits)
	}
}

func TestClient_ZeroConfig_StillAppliesCacheAndRateLimitDefaults(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := restclient.New(restclient.Config{})
	if _, err := c.Get(srv.URL); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if _, err := c.Get(srv.URL); err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected the zero-value Config to still install a cache serving the second Get, got %d hits", hits)
	}
}

func TestPackageLevelHelpers_UseDefaultClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	resp, err := restclient.Get(srv.URL)
	if err != nil {
		t.Fatalf("package-level Get: %v", err)
	}
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusTeapot)
	}
}
