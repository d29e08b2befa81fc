package thingsboard

import (
	"encoding/json"
	"errors"
)

// Device API topics.
const (
	TopicTelemetry               = "v1/devices/me/telemetry"
	TopicAttributes              = "v1/devices/me/attributes"
	TopicAttributeRequestPrefix  = "v1/devices/me/attributes/request/"
	TopicAttributeResponsePrefix = "v1/devices/me/attributes/response/"
	TopicAttributeResponseFilter = TopicAttributeResponsePrefix + "+"
	TopicRPCRequestPrefix        = "v1/devices/me/rpc/request/"
	TopicRPCRequestFilter        = TopicRPCRequestPrefix + "+"
	TopicRPCResponsePrefix       = "v1/devices/me/rpc/response/"
)

var (
	ErrNotConnected   = errors.New("platform session is not connected")
	ErrTimeout        = errors.New("platform operation timed out")
	ErrInvalidPayload = errors.New("invalid payload")
)

// RPCHandler serves one RPC method. The returned value is published as the
// response body; an error suppresses the response.
type RPCHandler func(params json.RawMessage) (any, error)

// AttributesHandler receives shared attribute values, restricted to the
// subscribed keys.
type AttributesHandler func(values map[string]json.RawMessage)

// RPCRequest is an inbound server-side RPC.
type RPCRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// AttributeRequest asks the platform for the current values of shared keys.
type AttributeRequest struct {
	SharedKeys string `json:"sharedKeys"`
}

// AttributeResponse is the reply to an AttributeRequest.
type AttributeResponse struct {
	Shared map[string]json.RawMessage `json:"shared"`
}
