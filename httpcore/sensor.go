package httpcore

import (
	"encoding/json"
	"math/rand"

	"github.com/firasghr/httpengine/fingerprint"
)

// SubmitSensorPayload generates a synthetic Akamai-style sensor telemetry
// payload and POSTs it to endpoint through this session, for targets that
// gate real requests behind a sensor beacon. seq is the payload's monotonic
// event sequence number; callers typically increment it per beacon sent on
// a given page visit.
func (s *Session) SubmitSensorPayload(endpoint string, rng *rand.Rand, seq int) (*Response, error) {
	payload := fingerprint.GenerateSensorPayload(rng, seq)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewTransportFailure(0, "marshal sensor payload: "+err.Error(), err)
	}
	return s.Post(endpoint, body, "application/json")
}
