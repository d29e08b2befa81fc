package mocks

import (
	"context"

	"github.com/benmeehan/climate-node/pkg/thingsboard"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of the services Backend interface
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBackend) Connected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockBackend) Disconnect() {
	m.Called()
}

func (m *MockBackend) SendTelemetry(values map[string]any) error {
	args := m.Called(values)
	return args.Error(0)
}

func (m *MockBackend) SendAttributes(values map[string]any) error {
	args := m.Called(values)
	return args.Error(0)
}

func (m *MockBackend) SubscribeRPC(handlers map[string]thingsboard.RPCHandler) error {
	args := m.Called(handlers)
	return args.Error(0)
}

func (m *MockBackend) SubscribeSharedAttributes(keys []string, handler thingsboard.AttributesHandler) error {
	args := m.Called(keys, handler)
	return args.Error(0)
}

func (m *MockBackend) RequestSharedAttributes(keys []string, handler thingsboard.AttributesHandler) error {
	args := m.Called(keys, handler)
	return args.Error(0)
}

func (m *MockBackend) Loop() {
	m.Called()
}
