package httpcore

import (
	"github.com/firasghr/httpengine/fingerprint"
)

// ProfileInterceptor layers a browser fingerprint.Profile's static headers
// onto every outgoing request, complementing the TLS/HTTP2-level
// impersonation httpcore/fingerprint applies via Request.ImpersonateChrome.
// Headers the request already set win over the profile's defaults.
type ProfileInterceptor struct {
	profile *fingerprint.Profile
}

// NewProfileInterceptor wraps profile as a session-level interceptor.
func NewProfileInterceptor(profile *fingerprint.Profile) *ProfileInterceptor {
	return &ProfileInterceptor{profile: profile}
}

func (p *ProfileInterceptor) BeforeRequest(_ *PooledHandle, req *Request) error {
	existing := make(map[string]bool, len(req.Headers))
	for _, h := range req.Headers {
		existing[canonicalName(h.Name)] = true
	}

	if req.UserAgent == nil && !existing["user-agent"] && p.profile.UserAgent != "" {
		req.SetUserAgent(p.profile.UserAgent)
	}
	for _, h := range p.profile.ExtraHeaders {
		if !existing[canonicalName(h.Name)] {
			req.Header(h.Name, h.Value)
		}
	}
	return nil
}

func (p *ProfileInterceptor) AfterResponse(*PooledHandle, *Request, *Response) error { return nil }

func canonicalName(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
