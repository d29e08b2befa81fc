package services

import (
	"encoding/json"
	"fmt"

	"github.com/benmeehan/climate-node/internal/actuators"
	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/internal/state"
	"github.com/benmeehan/climate-node/pkg/thingsboard"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// RemoteHandlers applies RPC calls and shared attribute updates to the actuators
// and the store. Both are invoked from the platform client's Loop.
type RemoteHandlers struct {
	Led    *actuators.Actuator
	Fan    *actuators.Actuator
	Store  *state.Store
	Logger zerolog.Logger
}

// NewRemoteHandlers creates the handlers.
func NewRemoteHandlers(led, fan *actuators.Actuator, store *state.Store, logger zerolog.Logger) *RemoteHandlers {
	return &RemoteHandlers{
		Led:    led,
		Fan:    fan,
		Store:  store,
		Logger: logger.With().Str("component", "remote_handlers").Logger(),
	}
}

// RPCHandlers returns the method table subscribed during the handshake.
func (h *RemoteHandlers) RPCHandlers() map[string]thingsboard.RPCHandler {
	return map[string]thingsboard.RPCHandler{
		constants.MethodSetLedSwitchValue: h.switchHandler(constants.MethodSetLedSwitchValue, h.Led),
		constants.MethodSetFanSwitchValue: h.switchHandler(constants.MethodSetFanSwitchValue, h.Fan),
	}
}

// switchHandler drives a from a boolean parameter and echoes the applied
// value under the method name. Undecodable parameters are rejected without
// touching the output.
func (h *RemoteHandlers) switchHandler(method string, a *actuators.Actuator) thingsboard.RPCHandler {
	return func(params json.RawMessage) (any, error) {
		on, err := thingsboard.DecodeBool(params)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		if err := a.Set(on); err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		h.Logger.Info().Str("method", method).Bool("value", on).Msg("RPC applied")
		return map[string]bool{method: on}, nil
	}
}

// OnSharedAttributes applies one batch of shared attribute values. Unknown
// keys and undecodable values are skipped. Both actuators are flagged for a
// report once the batch is processed.
func (h *RemoteHandlers) OnSharedAttributes(values map[string]json.RawMessage) {
	for key, raw := range values {
		switch key {
		case constants.AttrBlinkingInterval:
			h.applyBlinkingInterval(raw)
		case constants.AttrLedState:
			h.applySwitch(key, h.Led, raw)
		case constants.AttrFanState:
			h.applySwitch(key, h.Fan, raw)
		default:
			h.Logger.Debug().Str("key", key).Msg("Ignoring unknown shared attribute")
		}
	}

	h.Led.MarkChanged()
	h.Fan.MarkChanged()

	h.Logger.Debug().Strs("keys", lo.Keys(values)).Msg("Shared attributes processed")
}

func (h *RemoteHandlers) applyBlinkingInterval(raw json.RawMessage) {
	v, err := thingsboard.DecodeInt(raw)
	if err != nil {
		h.Logger.Error().Err(err).Str("key", constants.AttrBlinkingInterval).Msg("Ignoring shared attribute")
		return
	}
	if !h.Store.SetBlinkingInterval(v) {
		h.Logger.Debug().Int64("value", v).Msg("blinkingInterval out of range, ignored")
		return
	}
	h.Logger.Info().Int64("value", v).Msg("blinkingInterval updated")
}

func (h *RemoteHandlers) applySwitch(key string, a *actuators.Actuator, raw json.RawMessage) {
	on, err := thingsboard.DecodeBool(raw)
	if err != nil {
		h.Logger.Error().Err(err).Str("key", key).Msg("Ignoring shared attribute")
		return
	}
	if err := a.Set(on); err != nil {
		h.Logger.Error().Err(err).Str("key", key).Msg("Failed to apply shared attribute")
		return
	}
	h.Logger.Info().Str("key", key).Bool("value", on).Msg("Shared attribute applied")
}
