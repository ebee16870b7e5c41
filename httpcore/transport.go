package httpcore

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"path/filepath"
	"time"
)

var defaultDialContext = (&net.Dialer{}).DialContext

// dialerWithTimeout returns a DialContext bound by d, standing in for
// CURLOPT_CONNECTTIMEOUT_MS.
func dialerWithTimeout(d time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: d}
	return dialer.DialContext
}

// tlsConfigFor builds the *tls.Config a request's SSL options describe:
// verification on/off, a custom CA bundle/directory, and an optional client
// certificate for mutual TLS.
func tlsConfigFor(req *Request) *tls.Config {
	cfg := &tls.Config{
		InsecureSkipVerify: !req.VerifySSL, // #nosec G402 – caller-controlled via Request.SetVerifySSL
		MinVersion:         tls.VersionTLS12,
	}

	if req.CAInfo != nil || req.CAPath != nil {
		pool := x509.NewCertPool()
		loaded := false
		if req.CAInfo != nil {
			if p, err := loadCAFile(*req.CAInfo); err == nil {
				pool = p
				loaded = true
			}
		}
		if req.CAPath != nil && appendCADir(pool, *req.CAPath) {
			loaded = true
		}
		if loaded {
			cfg.RootCAs = pool
		}
	}

	if req.ClientCertPath != nil && req.ClientKeyPath != nil {
		if cert, err := tls.LoadX509KeyPair(*req.ClientCertPath, *req.ClientKeyPath); err == nil {
			cfg.Certificates = []tls.Certificate{cert}
		}
	}

	return cfg
}

func loadCAFile(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path) // #nosec G304 – operator-supplied CA bundle path
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(data)
	return pool, nil
}

// appendCADir loads every regular file in dir as a PEM-encoded CA bundle and
// adds it to pool, standing in for curl's CURLOPT_CAPATH (a directory of
// certificates, read here unconditionally rather than by hash lookup).
// Reports whether at least one certificate was added.
func appendCADir(pool *x509.CertPool, dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	ok := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name())) // #nosec G304 – operator-supplied CA directory
		if err != nil {
			continue
		}
		if pool.AppendCertsFromPEM(data) {
			ok = true
		}
	}
	return ok
}
