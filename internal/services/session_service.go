package services

import (
	"context"
	"fmt"
	"time"

	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/internal/state"
	"github.com/benmeehan/climate-node/pkg/identity"
	"github.com/rs/zerolog"
)

// SessionService establishes the platform session once the link is up,
// re-establishes it after any loss and pumps it while it is up.
type SessionService struct {
	Backend    Backend
	Store      *state.Store
	DeviceInfo identity.DeviceInfoInterface
	Handlers   *RemoteHandlers
	Interval   time.Duration

	*task
}

// NewSessionService initializes a new SessionService.
func NewSessionService(backend Backend, store *state.Store, deviceInfo identity.DeviceInfoInterface,
	handlers *RemoteHandlers, interval time.Duration, logger zerolog.Logger) *SessionService {

	return &SessionService{
		Backend:    backend,
		Store:      store,
		DeviceInfo: deviceInfo,
		Handlers:   handlers,
		Interval:   interval,
		task:       newTask("session", logger),
	}
}

// Start launches the session loop in a separate goroutine.
func (s *SessionService) Start() error {
	return s.start(func(ctx context.Context) {
		every(ctx, s.Interval, true, s.cycle)
	})
}

// Stop gracefully stops the session service.
func (s *SessionService) Stop() error {
	return s.stop()
}

func (s *SessionService) cycle(ctx context.Context) {
	if !s.Store.LinkConnected() {
		if s.Store.SessionConnected() || s.Backend.Connected() {
			s.Backend.Disconnect()
			s.Store.SetSessionConnected(false)
			s.logger.Warn().Msg("Network link down, session closed")
		}
		return
	}

	if s.Store.SessionConnected() {
		if s.Backend.Connected() {
			s.Backend.Loop()
			return
		}
		s.Store.SetSessionConnected(false)
		s.logger.Warn().Msg("Platform connection lost, re-handshaking next cycle")
		return
	}

	if err := s.handshake(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Platform handshake failed")
		s.Backend.Disconnect()
		return
	}

	s.Store.SetSessionConnected(true)
	s.logger.Info().Msg("Platform session established")
}

// handshake connects and restores everything a session needs: identity
// attributes, RPC and shared attribute subscriptions, and one request for the
// current shared attribute values. The first failing step aborts it.
func (s *SessionService) handshake(ctx context.Context) error {
	if err := s.Backend.Connect(ctx); err != nil {
		return err
	}

	id := s.DeviceInfo.GetDeviceIdentity()
	err := s.Backend.SendAttributes(map[string]any{
		constants.AttrMacAddress:      id.MacAddress,
		constants.AttrFirmwareVersion: id.FirmwareVersion,
	})
	if err != nil {
		return fmt.Errorf("send identity: %w", err)
	}

	if err := s.Backend.SubscribeRPC(s.Handlers.RPCHandlers()); err != nil {
		return err
	}
	if err := s.Backend.SubscribeSharedAttributes(constants.SharedAttributeKeys, s.Handlers.OnSharedAttributes); err != nil {
		return err
	}
	return s.Backend.RequestSharedAttributes(constants.SharedAttributeKeys, s.Handlers.OnSharedAttributes)
}

// SessionLostHandler returns the transport's connection-lost callback. It
// marks the session down at once so publishers stop before the next session cycle.
func SessionLostHandler(store *state.Store, logger zerolog.Logger) func(error) {
	return func(err error) {
		store.SetSessionConnected(false)
		logger.Warn().Err(err).Msg("Platform connection lost")
	}
}
