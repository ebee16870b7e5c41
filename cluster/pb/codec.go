package pb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec implements encoding.Codec for the message types in this package.
// MasterController's messages are plain structs rather than protoc-generated
// proto.Message implementations, so the default "proto" codec (which requires
// that interface) cannot encode them. Registering a codec under the same
// name ("proto") replaces the codec gRPC selects when a call specifies no
// content-subtype, which is the case for every RPC in this package.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
