package multisession_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/firasghr/httpengine/httpcore"
	"github.com/firasghr/httpengine/httpcore/multisession"
)

func TestMultiSession_FanOut_AllCallbacksFire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	pool := httpcore.NewSessionPool(httpcore.NewConnectionPool(4), 4)
	ms := multisession.New(pool, 4)

	const n = 20
	var mu sync.Mutex
	seen := make(map[string]bool)

	for i := 0; i < n; i++ {
		req := httpcore.NewRequest().SetMethod(httpcore.MethodGET).SetURL(srv.URL + "/r")
		ms.AddRequest(req, func(resp *httpcore.Response, err error) {
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			seen[string(resp.Body)] = true
			mu.Unlock()
		})
	}

	if ms.Pending() != n {
		t.Fatalf("Pending before Perform: got %d, want %d", ms.Pending(), n)
	}

	ms.Perform()

	if ms.Pending() != 0 {
		t.Errorf("Pending after Perform: got %d, want 0", ms.Pending())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || !seen["/r"] {
		t.Errorf("expected every callback to observe body %q, got %v", "/r", seen)
	}
}

func TestMultiSession_Perform_EmptyBatch_NoOp(t *testing.T) {
	pool := httpcore.NewSessionPool(httpcore.NewConnectionPool(1), 1)
	ms := multisession.New(pool, 2)
	ms.Perform() // should return immediately without panicking
	if ms.Pending() != 0 {
		t.Errorf("expected 0 pending jobs, got %d", ms.Pending())
	}
}

func TestMultiSession_PropagatesErrors(t *testing.T) {
	pool := httpcore.NewSessionPool(httpcore.NewConnectionPool(1), 1)
	ms := multisession.New(pool, 1)

	var gotErr error
	req := httpcore.NewRequest().SetMethod(httpcore.MethodGET).SetURL("http://127.0.0.1:1/unreachable")
	ms.AddRequest(req, func(resp *httpcore.Response, err error) {
		gotErr = err
	})
	ms.Perform()

	if gotErr == nil {
		t.Error("expected an error for an unreachable host")
	}
}
