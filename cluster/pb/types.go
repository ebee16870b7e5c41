// Package pb holds the wire types and gRPC service scaffolding for the
// MasterController service. It is written by hand in the shape protoc-gen-go
// and protoc-gen-go-grpc would produce, against a cluster.proto that defines
// the MasterController service used by cluster.MasterControllerServer and
// cluster.WorkerClient.
package pb

// Cookie mirrors a single session cookie as it travels between a worker and
// the master controller.
type Cookie struct {
	Name        string
	Value       string
	Domain      string
	Path        string
	ExpiresUnix int64
	Secure      bool
	HttpOnly    bool
}

// BroadcastCookieRequest uploads cookies obtained by one worker session.
type BroadcastCookieRequest struct {
	PcId      string
	SessionId int32
	Cookies   []*Cookie
}

// BroadcastCookieResponse acknowledges a BroadcastCookie call.
type BroadcastCookieResponse struct {
	Accepted bool
}

// SessionStatus is a lifecycle snapshot for one session on one PC.
type SessionStatus struct {
	SessionId int32
	PcId      string
	State     string
}

// UpdateStatusRequest reports a session lifecycle transition.
type UpdateStatusRequest struct {
	Status *SessionStatus
}

// UpdateStatusResponse acknowledges an UpdateStatus call.
type UpdateStatusResponse struct {
	Ok bool
}

// GetGlobalCookiesRequest asks for a snapshot of the Global Cookie Jar.
type GetGlobalCookiesRequest struct {
	PcId string
}

// GetGlobalCookiesResponse is a Global Cookie Jar snapshot with its version.
type GetGlobalCookiesResponse struct {
	Cookies []*Cookie
	Version int64
}

// GetAllStatusRequest has no parameters; it asks for every tracked session.
type GetAllStatusRequest struct{}

// GetAllStatusResponse lists every tracked session.
type GetAllStatusResponse struct {
	Sessions []*SessionStatus
}

// WatchCookiesRequest opens a streaming subscription for one PC.
type WatchCookiesRequest struct {
	PcId string
}
