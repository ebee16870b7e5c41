package httpcore

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	netscapeHeaderLine1 = "# Netscape HTTP Cookie File"
	netscapeHeaderLine2 = "# https://curl.se/docs/http-cookies.html"
)

// CookieJar stores cookies keyed by name only. This mirrors the source's
// documented limitation: two cookies sharing a name but differing in
// domain+path overwrite one another, rather than the RFC 6265 composite
// key. Preserved deliberately — see DESIGN.md's Open Question decision.
type CookieJar struct {
	mu      sync.Mutex
	cookies map[string]Cookie
}

// NewCookieJar returns an empty jar.
func NewCookieJar() *CookieJar {
	return &CookieJar{cookies: make(map[string]Cookie)}
}

// SetCookie stores c, or — if c is already expired — removes any existing
// entry with the same name.
func (j *CookieJar) SetCookie(c Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if c.IsExpired() {
		delete(j.cookies, c.Name)
		return
	}
	j.cookies[c.Name] = c
}

// GetCookie returns the named cookie if present and not expired.
func (j *CookieJar) GetCookie(name string) (Cookie, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.cookies[name]
	if !ok || c.IsExpired() {
		return Cookie{}, false
	}
	return c, true
}

// GetCookies returns a snapshot of every non-expired cookie.
func (j *CookieJar) GetCookies() []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		if !c.IsExpired() {
			out = append(out, c)
		}
	}
	return out
}

// Clear empties the jar.
func (j *CookieJar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = make(map[string]Cookie)
}

// ParseCookiesFromHeaders scans headers for every Set-Cookie entry
// (matched case-insensitively) and installs each one, defaulting Domain to
// defaultDomain when the attribute is absent.
func (j *CookieJar) ParseCookiesFromHeaders(headers []HeaderPair, defaultDomain string) {
	for _, h := range headers {
		if canonicalEqual(h.Name, "Set-Cookie") {
			j.ParseCookieHeader(h.Value, defaultDomain)
		}
	}
}

// ParseCookieHeader parses and installs a single Set-Cookie value.
func (j *CookieJar) ParseCookieHeader(raw, defaultDomain string) {
	c, ok := parseCookieHeader(raw, defaultDomain)
	if !ok {
		return
	}
	j.SetCookie(c)
}

// SaveToFile writes every non-expired cookie to filename in Netscape
// cookie-file format.
func (j *CookieJar) SaveToFile(filename string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Create(filename) // #nosec G304 – operator-supplied path
	if err != nil {
		return fmt.Errorf("httpcore: save cookie jar %q: %w", filename, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, netscapeHeaderLine1)
	fmt.Fprintln(w, netscapeHeaderLine2)

	for _, c := range j.cookies {
		if c.IsExpired() {
			continue
		}
		expires := int64(0)
		if c.Expires != nil {
			expires = c.Expires.Unix()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Domain, boolFlag(c.HTTPOnly), c.Path, boolFlag(c.Secure),
			expires, c.Name, c.Value)
	}

	return w.Flush()
}

// LoadFromFile replaces the jar's contents with the cookies parsed from
// filename. Lines that are comments or have fewer than 7 tab-separated
// fields are skipped; a line whose epoch field does not parse is skipped
// rather than aborting the whole load (§9 decision: try-parse, don't
// throw).
func (j *CookieJar) LoadFromFile(filename string) error {
	f, err := os.Open(filename) // #nosec G304 – operator-supplied path
	if err != nil {
		return fmt.Errorf("httpcore: load cookie jar %q: %w", filename, err)
	}
	defer f.Close()

	cookies := make(map[string]Cookie)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}

		expiresSec, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			continue
		}

		var expires *time.Time
		if expiresSec > 0 {
			t := time.Unix(expiresSec, 0)
			expires = &t
		}

		c := Cookie{
			Domain:   fields[0],
			HTTPOnly: fields[1] == "TRUE",
			Path:     fields[2],
			Secure:   fields[3] == "TRUE",
			Name:     fields[5],
			Value:    fields[6],
			Expires:  expires,
		}
		cookies[c.Name] = c
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("httpcore: read cookie jar %q: %w", filename, err)
	}

	j.mu.Lock()
	j.cookies = cookies
	j.mu.Unlock()
	return nil
}

func boolFlag(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
