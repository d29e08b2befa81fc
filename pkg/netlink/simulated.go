package netlink

import (
	"context"
	"sync/atomic"
)

// SimulatedLink is an in-process link. Begin brings it up after the
// configured number of status polls; Drop takes it down again.
type SimulatedLink struct {
	pollsToConnect int32
	pending        atomic.Int32
	up             atomic.Bool
	associating    atomic.Bool
	failing        atomic.Bool
	info           Info
	mac            string
}

// NewSimulatedLink returns a link that connects pollsToConnect polls after Begin.
func NewSimulatedLink(pollsToConnect int, mac string, info Info) *SimulatedLink {
	return &SimulatedLink{pollsToConnect: int32(pollsToConnect), info: info, mac: mac}
}

func (s *SimulatedLink) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.pending.Store(s.pollsToConnect)
	s.associating.Store(true)
	return nil
}

func (s *SimulatedLink) Status() Status {
	if s.up.Load() {
		return Connected
	}
	if !s.associating.Load() || s.failing.Load() {
		return Disconnected
	}
	if s.pending.Add(-1) <= 0 {
		s.associating.Store(false)
		s.up.Store(true)
		return Connected
	}
	return Connecting
}

// Drop takes the link down.
func (s *SimulatedLink) Drop() {
	s.up.Store(false)
	s.associating.Store(false)
}

// SetFailing makes association never complete while set.
func (s *SimulatedLink) SetFailing(v bool) {
	s.failing.Store(v)
}

func (s *SimulatedLink) Info() Info {
	return s.info
}

func (s *SimulatedLink) HardwareAddr() string {
	return s.mac
}
