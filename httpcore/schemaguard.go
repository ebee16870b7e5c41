package httpcore

import (
	"sync"

	"github.com/firasghr/httpengine/payload"
)

// SchemaGuard reports mismatches detected by SchemaGuardInterceptor without
// interrupting the call — a broken schema is a signal for operators, not a
// transport failure.
type SchemaGuard interface {
	OnMismatch(url string, mismatches []payload.Mismatch)
}

// SchemaGuardFunc adapts a plain function to SchemaGuard.
type SchemaGuardFunc func(url string, mismatches []payload.Mismatch)

func (f SchemaGuardFunc) OnMismatch(url string, mismatches []payload.Mismatch) { f(url, mismatches) }

// SchemaGuardInterceptor learns the JSON shape of the first successful
// response for each URL and flags structural drift on every response after
// that, using payload.Validator. One Validator is kept per URL so unrelated
// endpoints don't contaminate each other's baseline.
type SchemaGuardInterceptor struct {
	guard      SchemaGuard
	mu         sync.Mutex
	validators map[string]*payload.Validator
}

// NewSchemaGuardInterceptor returns an interceptor that calls guard.OnMismatch
// whenever a response's JSON shape drifts from the first one observed for
// its URL.
func NewSchemaGuardInterceptor(guard SchemaGuard) *SchemaGuardInterceptor {
	return &SchemaGuardInterceptor{guard: guard, validators: make(map[string]*payload.Validator)}
}

func (s *SchemaGuardInterceptor) BeforeRequest(*PooledHandle, *Request) error { return nil }

func (s *SchemaGuardInterceptor) AfterResponse(_ *PooledHandle, req *Request, resp *Response) error {
	if !resp.OK() || len(resp.Body) == 0 {
		return nil
	}
	ct, _ := resp.Header("Content-Type")
	if ct != "" && !containsJSON(ct) {
		return nil
	}

	s.mu.Lock()
	v, ok := s.validators[req.URL]
	if !ok {
		v = payload.NewValidator()
		s.validators[req.URL] = v
	}
	s.mu.Unlock()

	mismatches, err := v.Validate(resp.Body)
	if err != nil {
		return nil // not a JSON object; nothing to guard
	}
	if len(mismatches) > 0 && s.guard != nil {
		s.guard.OnMismatch(req.URL, mismatches)
	}
	return nil
}

func containsJSON(contentType string) bool {
	for i := 0; i+4 <= len(contentType); i++ {
		if contentType[i:i+4] == "json" {
			return true
		}
	}
	return false
}
