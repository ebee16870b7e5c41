package httpcore

import (
	"io"
	"time"
)

// lowSpeedAbort is the TransportError code raised when a transfer's speed
// stays below the configured low-speed limit, mirroring curl's
// CURLE_OPERATION_TIMEDOUT (28) for a CURLOPT_LOW_SPEED_LIMIT/TIME abort.
const lowSpeedAbort = 28

// lowSpeedReader wraps a response body and aborts the read once fewer than
// limit bytes have arrived over any window of length period, standing in
// for CURLOPT_LOW_SPEED_LIMIT/CURLOPT_LOW_SPEED_TIME.
type lowSpeedReader struct {
	rc        io.ReadCloser
	limit     int64
	period    time.Duration
	lastCheck time.Time
	lastBytes int64
	total     int64
}

func newLowSpeedReader(rc io.ReadCloser, limit int64, period time.Duration) *lowSpeedReader {
	return &lowSpeedReader{rc: rc, limit: limit, period: period, lastCheck: time.Now()}
}

func (r *lowSpeedReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	r.total += int64(n)

	now := time.Now()
	if elapsed := now.Sub(r.lastCheck); elapsed >= r.period {
		if r.total-r.lastBytes < r.limit {
			r.rc.Close()
			return n, NewTransportFailure(lowSpeedAbort, "transfer speed below low-speed limit", nil)
		}
		r.lastCheck = now
		r.lastBytes = r.total
	}
	return n, err
}

func (r *lowSpeedReader) Close() error { return r.rc.Close() }
