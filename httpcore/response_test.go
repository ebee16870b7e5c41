package httpcore_test

import (
	"testing"

	"github.com/firasghr/httpengine/httpcore"
)

func TestResponse_Classifiers(t *testing.T) {
	cases := []struct {
		status                                      int
		ok, redirect, clientErr, serverErr bool
	}{
		{200, true, false, false, false},
		{204, true, false, false, false},
		{301, false, true, false, false},
		{404, false, false, true, false},
		{500, false, false, false, true},
	}
	for _, c := range cases {
		r := httpcore.NewResponse(c.status, nil, nil)
		if r.OK() != c.ok {
			t.Errorf("status %d: OK() = %v, want %v", c.status, r.OK(), c.ok)
		}
		if r.Redirect() != c.redirect {
			t.Errorf("status %d: Redirect() = %v, want %v", c.status, r.Redirect(), c.redirect)
		}
		if r.ClientError() != c.clientErr {
			t.Errorf("status %d: ClientError() = %v, want %v", c.status, r.ClientError(), c.clientErr)
		}
		if r.ServerError() != c.serverErr {
			t.Errorf("status %d: ServerError() = %v, want %v", c.status, r.ServerError(), c.serverErr)
		}
	}
}

func TestResponse_Header_CaseInsensitive(t *testing.T) {
	r := httpcore.NewResponse(200, nil, []httpcore.HeaderPair{{Name: "Content-Type", Value: "application/json"}})
	v, ok := r.Header("content-type")
	if !ok || v != "application/json" {
		t.Errorf("Header lookup: got (%q, %v)", v, ok)
	}
	if r.ContentType() != "application/json" {
		t.Errorf("ContentType: got %q", r.ContentType())
	}
}

func TestResponse_ContentLength(t *testing.T) {
	r := httpcore.NewResponse(200, nil, []httpcore.HeaderPair{{Name: "Content-Length", Value: "42"}})
	n, ok := r.ContentLength()
	if !ok || n != 42 {
		t.Errorf("ContentLength: got (%d, %v), want (42, true)", n, ok)
	}
}

func TestResponse_ContentLength_Missing(t *testing.T) {
	r := httpcore.NewResponse(200, nil, nil)
	n, ok := r.ContentLength()
	if ok || n != 0 {
		t.Errorf("ContentLength on missing header: got (%d, %v), want (0, false)", n, ok)
	}
}

func TestResponse_ContentLength_Unparsable(t *testing.T) {
	r := httpcore.NewResponse(200, nil, []httpcore.HeaderPair{{Name: "Content-Length", Value: "not-a-number"}})
	_, ok := r.ContentLength()
	if ok {
		t.Error("expected ContentLength to report false for unparsable value")
	}
}
