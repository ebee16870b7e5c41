// Package fingerprint adapts the engine's Chrome-120 TLS/HTTP2 impersonation
// transport for use as a PooledHandle's RoundTripper when a Request sets
// ImpersonateChrome.
package fingerprint

import (
	"net/http"

	"github.com/firasghr/httpengine/client"
)

// ChromeRoundTripper returns an http.RoundTripper that negotiates TLS and
// HTTP/2 the way a real Chrome 120 client does (uTLS ClientHello, HTTP/2
// SETTINGS and ordered headers), built on top of the engine's own
// client.NewChrome120H2Transport.
func ChromeRoundTripper() http.RoundTripper {
	return client.NewChrome120H2Transport(client.H2TransportConfig{})
}

// Apply installs the Chrome-impersonation transport onto an *http.Client,
// replacing whatever RoundTripper it previously used. Intended for a
// PooledHandle acquired on behalf of a Request with ImpersonateChrome set.
func Apply(c *http.Client) {
	c.Transport = ChromeRoundTripper()
}
