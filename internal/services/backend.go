package services

import (
	"context"

	"github.com/benmeehan/climate-node/pkg/thingsboard"
)

// Backend is the platform session used by the tasks. *thingsboard.Client
// implements it.
type Backend interface {
	Connect(ctx context.Context) error
	Connected() bool
	Disconnect()

	SendTelemetry(values map[string]any) error
	SendAttributes(values map[string]any) error

	SubscribeRPC(handlers map[string]thingsboard.RPCHandler) error
	SubscribeSharedAttributes(keys []string, handler thingsboard.AttributesHandler) error
	RequestSharedAttributes(keys []string, handler thingsboard.AttributesHandler) error

	// Loop dispatches queued inbound messages and flushes queued responses.
	Loop()
}

var _ Backend = (*thingsboard.Client)(nil)
