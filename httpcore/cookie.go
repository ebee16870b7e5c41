package httpcore

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// httpDateLayout is the RFC 1123 GMT rendering curl and Set-Cookie's
// Expires attribute both use.
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Cookie is one in-memory cookie. Path defaults to "/" when unset.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	Expires  *time.Time
}

// IsExpired reports whether Expires is set and in the past.
func (c Cookie) IsExpired() bool {
	return c.Expires != nil && time.Now().After(*c.Expires)
}

// String renders the cookie the way curl's Cookie::to_string does:
// "name=value" followed by "; Domain=…", "; Path=…", "; Secure",
// "; HttpOnly", "; Expires=…" for every attribute that is actually set.
func (c Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if c.Expires != nil {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(httpDateLayout))
	}
	return b.String()
}

// canonicalEqual compares two header names the way the engine treats
// Set-Cookie lookup: case-insensitively, via the same canonicalization
// net/http uses for wire headers.
func canonicalEqual(a, b string) bool {
	return http.CanonicalHeaderKey(a) == http.CanonicalHeaderKey(b)
}

// parseCookieHeader parses one Set-Cookie value into a Cookie. The first
// "key=value" segment (up to ';' or end) is the name/value; subsequent
// ';'-separated attributes are matched case-insensitively. Unparsable
// expires/max-age attributes are silently dropped rather than aborting the
// whole cookie, and max-age wins over expires when both are present,
// whichever of the two appears first in the header.
func parseCookieHeader(raw, defaultDomain string) (Cookie, bool) {
	parts := strings.Split(raw, ";")
	if len(parts) == 0 {
		return Cookie{}, false
	}

	nameValue := strings.TrimSpace(parts[0])
	eq := strings.IndexByte(nameValue, '=')
	if eq < 0 {
		return Cookie{}, false
	}

	c := Cookie{
		Name:   strings.TrimSpace(nameValue[:eq]),
		Value:  strings.TrimSpace(nameValue[eq+1:]),
		Domain: defaultDomain,
		Path:   "/",
	}

	var maxAgeSet bool
	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		var attrName, attrValue string
		if i := strings.IndexByte(attr, '='); i >= 0 {
			attrName = strings.TrimSpace(attr[:i])
			attrValue = strings.TrimSpace(attr[i+1:])
		} else {
			attrName = attr
		}

		switch strings.ToLower(attrName) {
		case "domain":
			c.Domain = attrValue
		case "path":
			c.Path = attrValue
		case "secure":
			c.Secure = true
		case "httponly":
			c.HTTPOnly = true
		case "expires":
			// max-age always wins when both are present, regardless of
			// which attribute the server happened to write later.
			if maxAgeSet {
				continue
			}
			if t, err := time.Parse(httpDateLayout, attrValue); err == nil {
				c.Expires = &t
			}
		case "max-age":
			if seconds, err := strconv.Atoi(attrValue); err == nil {
				t := time.Now().Add(time.Duration(seconds) * time.Second)
				c.Expires = &t
				maxAgeSet = true
			}
		}
	}

	return c, true
}
