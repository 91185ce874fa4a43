// Package rpc wires the five orchestrator components together over gRPC
// without a protoc step: messages are plain Go structs, and Codec forces
// JSON wire encoding in place of generated protobuf marshaling. Service
// descriptors and client stubs are hand-written in the same shape
// protoc-gen-go-grpc would produce.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is registered with google.golang.org/grpc/encoding and forced
// on every client dial and server registration in this package via
// grpc.ForceCodec / grpc.ForceServerCodec.
const CodecName = "json"

// Codec marshals RPC messages as JSON. Every message type in this package
// is a plain struct with json tags, so no generated code is required.
type Codec struct{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(Codec{})
}
