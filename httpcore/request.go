package httpcore

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Method enumerates the seven HTTP methods the engine understands.
type Method string

const (
	MethodGET     Method = "GET"
	MethodPOST    Method = "POST"
	MethodPUT     Method = "PUT"
	MethodDELETE  Method = "DELETE"
	MethodPATCH   Method = "PATCH"
	MethodHEAD    Method = "HEAD"
	MethodOPTIONS Method = "OPTIONS"
)

// HTTPVersion selects the protocol version preference for a request.
type HTTPVersion int

const (
	// HTTPVersionDefault states no preference. The session installs no
	// HTTP/2 support for it, and net/http does not enable HTTP/2 on its own
	// for a transport with a custom TLS config, so HTTPS uses HTTP/1.1.
	HTTPVersionDefault HTTPVersion = iota
	HTTPVersion1
	HTTPVersion2
	HTTPVersion3
)

// HeaderPair is one name/value entry. Request.Headers is a slice rather than
// a map so that insertion order and the exact casing supplied by the caller
// survive unchanged, per the case-sensitive ordered mapping the request
// model promises.
type HeaderPair struct {
	Name  string
	Value string
}

// ProxyKind distinguishes the proxy protocol, mirroring curl's CURLPROXY_*
// family without depending on a curl binding.
type ProxyKind int

const (
	ProxyHTTP ProxyKind = iota
	ProxySOCKS4
	ProxySOCKS5
)

var validate = validator.New()

// Request is a builder-style description of one HTTP call. Every setter
// returns the same *Request so calls chain; nothing here talks to the
// network — Session.doOnce is where a Request becomes a live call.
type Request struct {
	URL     string `validate:"required,url"`
	Method  Method `validate:"required,oneof=GET POST PUT DELETE PATCH HEAD OPTIONS"`
	Headers []HeaderPair
	Body    []byte

	Timeout        *time.Duration
	ConnectTimeout *time.Duration
	FollowRedirects bool
	MaxRedirects    *int
	VerifySSL       bool

	CAPath         *string
	CAInfo         *string
	ClientCertPath *string `validate:"required_with=ClientKeyPath"`
	ClientKeyPath  *string `validate:"required_with=ClientCertPath"`

	ProxyURL      *string
	ProxyKind     *ProxyKind
	ProxyUsername *string
	ProxyPassword *string

	Username *string
	Password *string

	MultipartForm *MultipartForm

	Cookies   []Cookie
	CookieJar *CookieJar

	UserAgent      *string
	AcceptEncoding *string

	LowSpeedLimit *int64
	LowSpeedTime  *time.Duration

	ResumeFrom *int64

	HTTPVersion HTTPVersion

	Retries      int `validate:"min=0"`
	RetryDelay   time.Duration
	RetryOnError bool

	Interceptors []Interceptor

	// ImpersonateChrome, when set, makes the session swap its handle's
	// client transport for the uTLS-fingerprinted one from
	// httpcore/fingerprint for this request.
	ImpersonateChrome bool
}

// NewRequest returns a zero Request with the engine's defaults applied:
// GET, follow redirects, verify TLS, no retries.
func NewRequest() *Request {
	return &Request{
		Method:          MethodGET,
		FollowRedirects: true,
		VerifySSL:       true,
		RetryDelay:      time.Second,
	}
}

func (r *Request) SetURL(u string) *Request { r.URL = u; return r }

func (r *Request) SetMethod(m Method) *Request { r.Method = m; return r }

// Header appends a header entry, preserving casing and order. Repeated
// calls with the same name add duplicate entries, matching curl_slist
// semantics where every header() call appends a new line.
func (r *Request) Header(name, value string) *Request {
	r.Headers = append(r.Headers, HeaderPair{Name: name, Value: value})
	return r
}

// SetHeaders replaces the header list wholesale.
func (r *Request) SetHeaders(h []HeaderPair) *Request {
	r.Headers = h
	return r
}

func (r *Request) SetBody(b []byte) *Request { r.Body = b; return r }

func (r *Request) SetTimeout(d time.Duration) *Request { r.Timeout = &d; return r }

func (r *Request) SetConnectTimeout(d time.Duration) *Request { r.ConnectTimeout = &d; return r }

func (r *Request) SetFollowRedirects(follow bool) *Request { r.FollowRedirects = follow; return r }

func (r *Request) SetMaxRedirects(n int) *Request { r.MaxRedirects = &n; return r }

func (r *Request) SetVerifySSL(verify bool) *Request { r.VerifySSL = verify; return r }

func (r *Request) SetCAPath(path string) *Request { r.CAPath = &path; return r }

func (r *Request) SetCAInfo(info string) *Request { r.CAInfo = &info; return r }

func (r *Request) SetClientCert(certPath, keyPath string) *Request {
	r.ClientCertPath = &certPath
	r.ClientKeyPath = &keyPath
	return r
}

func (r *Request) SetProxy(url string) *Request { r.ProxyURL = &url; return r }

func (r *Request) SetProxyKind(kind ProxyKind) *Request { r.ProxyKind = &kind; return r }

func (r *Request) SetProxyAuth(username, password string) *Request {
	r.ProxyUsername = &username
	r.ProxyPassword = &password
	return r
}

func (r *Request) SetBasicAuth(username, password string) *Request {
	r.Username = &username
	r.Password = &password
	return r
}

// BearerAuth installs an "Authorization: Bearer <token>" header.
func (r *Request) BearerAuth(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

func (r *Request) SetMultipartForm(form *MultipartForm) *Request {
	r.MultipartForm = form
	return r
}

func (r *Request) AddCookie(c Cookie) *Request { r.Cookies = append(r.Cookies, c); return r }

func (r *Request) SetCookieJar(jar *CookieJar) *Request { r.CookieJar = jar; return r }

func (r *Request) SetUserAgent(agent string) *Request { r.UserAgent = &agent; return r }

func (r *Request) SetAcceptEncoding(enc string) *Request { r.AcceptEncoding = &enc; return r }

func (r *Request) SetLowSpeed(limit int64, period time.Duration) *Request {
	r.LowSpeedLimit = &limit
	r.LowSpeedTime = &period
	return r
}

func (r *Request) SetResumeFrom(offset int64) *Request { r.ResumeFrom = &offset; return r }

// HTTP2 sets the version preference to HTTP/2 when enabled, or resets to
// HTTP/1.1 when disabled.
func (r *Request) HTTP2(enabled bool) *Request {
	if enabled {
		r.HTTPVersion = HTTPVersion2
	} else {
		r.HTTPVersion = HTTPVersion1
	}
	return r
}

// HTTP3 sets the version preference to HTTP/3 when enabled, or resets to
// HTTP/1.1 when disabled.
func (r *Request) HTTP3(enabled bool) *Request {
	if enabled {
		r.HTTPVersion = HTTPVersion3
	} else {
		r.HTTPVersion = HTTPVersion1
	}
	return r
}

// SetRetries sets the retry budget. SetRetries(0) disables retrying regardless of
// RetryOnError.
func (r *Request) SetRetries(n int) *Request { r.Retries = n; return r }

func (r *Request) SetRetryDelay(d time.Duration) *Request { r.RetryDelay = d; return r }

func (r *Request) SetRetryOnError(retry bool) *Request { r.RetryOnError = retry; return r }

func (r *Request) AddInterceptor(i Interceptor) *Request {
	r.Interceptors = append(r.Interceptors, i)
	return r
}

// Clone returns a shallow copy whose Headers slice is independent, so a
// caller (the cache-revalidation path in Session.Execute) can append
// conditional headers without mutating the original Request.
func (r *Request) Clone() *Request {
	c := *r
	c.Headers = append([]HeaderPair(nil), r.Headers...)
	c.Cookies = append([]Cookie(nil), r.Cookies...)
	return &c
}

// Validate enforces the builder invariants from the request model: the
// method must be one of the seven enumerated values, and a client
// certificate requires a matching client key (and vice versa).
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Retries < 0 {
		return NewTransportFailure(0, "retries must be >= 0", nil)
	}
	return nil
}
