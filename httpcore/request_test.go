package httpcore_test

import (
	"testing"
	"time"

	"github.com/firasghr/httpengine/httpcore"
)

func TestNewRequest_Defaults(t *testing.T) {
	r := httpcore.NewRequest()
	if r.Method != httpcore.MethodGET {
		t.Errorf("Method: got %v, want GET", r.Method)
	}
	if !r.FollowRedirects {
		t.Error("FollowRedirects should default to true")
	}
	if !r.VerifySSL {
		t.Error("VerifySSL should default to true")
	}
}

func TestRequest_Builder_Chaining(t *testing.T) {
	r := httpcore.NewRequest().
		SetURL("https://example.com/path").
		SetMethod(httpcore.MethodPOST).
		Header("X-One", "a").
		Header("X-One", "b").
		SetBody([]byte("payload"))

	if r.URL != "https://example.com/path" {
		t.Errorf("URL: got %q", r.URL)
	}
	if len(r.Headers) != 2 {
		t.Fatalf("expected 2 header entries (duplicates preserved), got %d", len(r.Headers))
	}
	if r.Headers[0].Value != "a" || r.Headers[1].Value != "b" {
		t.Errorf("header order/values not preserved: %+v", r.Headers)
	}
}

func TestRequest_BearerAuth(t *testing.T) {
	r := httpcore.NewRequest().BearerAuth("tok123")
	found := false
	for _, h := range r.Headers {
		if h.Name == "Authorization" && h.Value == "Bearer tok123" {
			found = true
		}
	}
	if !found {
		t.Error("expected Authorization: Bearer tok123 header")
	}
}

func TestRequest_HTTP2_HTTP3_Toggle(t *testing.T) {
	r := httpcore.NewRequest().HTTP2(true)
	if r.HTTPVersion != httpcore.HTTPVersion2 {
		t.Errorf("HTTP2(true): got %v", r.HTTPVersion)
	}
	r.HTTP2(false)
	if r.HTTPVersion != httpcore.HTTPVersion1 {
		t.Errorf("HTTP2(false): got %v, want HTTPVersion1", r.HTTPVersion)
	}
	r.HTTP3(true)
	if r.HTTPVersion != httpcore.HTTPVersion3 {
		t.Errorf("HTTP3(true): got %v", r.HTTPVersion)
	}
}

func TestRequest_Clone_IndependentHeaders(t *testing.T) {
	orig := httpcore.NewRequest().SetURL("https://example.com").Header("A", "1")
	clone := orig.Clone()
	clone.Header("B", "2")

	if len(orig.Headers) != 1 {
		t.Errorf("original should be unaffected by clone mutation, got %d headers", len(orig.Headers))
	}
	if len(clone.Headers) != 2 {
		t.Errorf("clone should have 2 headers, got %d", len(clone.Headers))
	}
}

func TestRequest_Validate_RejectsBadMethod(t *testing.T) {
	r := httpcore.NewRequest().SetURL("https://example.com")
	r.Method = "TRACE"
	if err := r.Validate(); err == nil {
		t.Error("expected validation error for unsupported method")
	}
}

func TestRequest_Validate_RequiresURL(t *testing.T) {
	r := httpcore.NewRequest()
	if err := r.Validate(); err == nil {
		t.Error("expected validation error for missing URL")
	}
}

func TestRequest_Validate_ClientCertRequiresKey(t *testing.T) {
	r := httpcore.NewRequest().SetURL("https://example.com")
	cert := "cert.pem"
	r.ClientCertPath = &cert
	if err := r.Validate(); err == nil {
		t.Error("expected validation error: client cert without key")
	}
}

func TestRequest_Validate_OK(t *testing.T) {
	r := httpcore.NewRequest().SetURL("https://example.com").SetMethod(httpcore.MethodGET)
	if err := r.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestRequest_SetRetries(t *testing.T) {
	r := httpcore.NewRequest().SetURL("https://example.com").SetRetries(3).SetRetryDelay(50 * time.Millisecond).SetRetryOnError(true)
	if r.Retries != 3 || r.RetryDelay != 50*time.Millisecond || !r.RetryOnError {
		t.Errorf("retry settings not applied: %+v", r)
	}
}
