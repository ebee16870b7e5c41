// Package cluster – httpcore cookie bridge.
//
// The WorkerClient and GlobalCookieJar both speak net/http's *http.Cookie so
// they stay usable outside this module. FromHTTPCoreCookies and
// ApplyHTTPCookies translate at the boundary where a local
// httpcore.CookieJar meets the cluster-wide jar, so a PC that solves a JS
// challenge can broadcast the resulting cookies to the other five PCs and
// install whatever the master pushes back.
package cluster

import (
	"net/http"

	"github.com/firasghr/httpengine/httpcore"
)

// FromHTTPCoreCookies converts httpcore.Cookie values (as returned by
// httpcore.CookieJar.GetCookies) to *http.Cookie, ready for
// WorkerClient.BroadcastCookie.
func FromHTTPCoreCookies(cookies []httpcore.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.Expires != nil {
			hc.Expires = *c.Expires
		}
		out = append(out, hc)
	}
	return out
}

// ApplyHTTPCookies installs cookies (as received from WorkerClient.GetCookies
// or a WatchCookies callback) into a local httpcore.CookieJar.
func ApplyHTTPCookies(jar *httpcore.CookieJar, cookies []*http.Cookie) {
	for _, hc := range cookies {
		c := httpcore.Cookie{
			Name:     hc.Name,
			Value:    hc.Value,
			Domain:   hc.Domain,
			Path:     hc.Path,
			Secure:   hc.Secure,
			HTTPOnly: hc.HttpOnly,
		}
		if !hc.Expires.IsZero() {
			t := hc.Expires
			c.Expires = &t
		}
		jar.SetCookie(c)
	}
}
