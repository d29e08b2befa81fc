package services

import (
	"context"
	"sync"

	"github.com/benmeehan/climate-node/internal/actuators"
	"github.com/benmeehan/climate-node/internal/state"
	"github.com/benmeehan/climate-node/pkg/hal"
	"github.com/rs/zerolog"
)

// stubClimate returns a fixed sample or error.
type stubClimate struct {
	mu      sync.Mutex
	climate hal.Climate
	err     error
	reads   int
}

func (s *stubClimate) Read(context.Context) (hal.Climate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.climate, s.err
}

func (s *stubClimate) Close() error { return nil }

func (s *stubClimate) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// stubAnalog returns a fixed raw value or error.
type stubAnalog struct {
	value int
	err   error
}

func (s *stubAnalog) Read() (int, error) { return s.value, s.err }
func (s *stubAnalog) Close() error       { return nil }

type rig struct {
	store  *state.Store
	ledOut *hal.MemoryOutput
	fanOut *hal.MemoryOutput
	led    *actuators.Actuator
	fan    *actuators.Actuator
}

func newRig() *rig {
	r := &rig{store: state.NewStore(), ledOut: hal.NewMemoryOutput(), fanOut: hal.NewMemoryOutput()}
	r.led = actuators.NewLed(r.ledOut, r.store, zerolog.Nop())
	r.fan = actuators.NewFan(r.fanOut, r.store, zerolog.Nop())
	return r
}

func (r *rig) online() {
	r.store.SetLinkConnected(true)
	r.store.SetSessionConnected(true)
}
