package services

import (
	"encoding/json"
	"testing"

	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/pkg/thingsboard"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteHandlers_SwitchRPC(t *testing.T) {
	for _, on := range []bool{true, false} {
		r := newRig()
		h := NewRemoteHandlers(r.led, r.fan, r.store, zerolog.Nop())
		require.NoError(t, r.led.Set(!on))
		r.led.ConsumeChange()

		params, _ := json.Marshal(on)
		resp, err := h.RPCHandlers()[constants.MethodSetLedSwitchValue](params)

		require.NoError(t, err)
		assert.Equal(t, map[string]bool{constants.MethodSetLedSwitchValue: on}, resp)
		level, _ := r.ledOut.Get()
		assert.Equal(t, on, level)
		assert.Equal(t, on, r.store.LedState())
		assert.True(t, r.led.ConsumeChange())
		assert.False(t, r.fan.ChangePending())
	}
}

func TestRemoteHandlers_MalformedRPCFailsClosed(t *testing.T) {
	r := newRig()
	h := NewRemoteHandlers(r.led, r.fan, r.store, zerolog.Nop())

	resp, err := h.RPCHandlers()[constants.MethodSetFanSwitchValue](json.RawMessage(`{"on":true}`))

	assert.ErrorIs(t, err, thingsboard.ErrInvalidPayload)
	assert.Nil(t, resp)
	assert.False(t, r.store.FanState())
	assert.False(t, r.fan.ChangePending())
	assert.Equal(t, 0, r.fanOut.Transitions())
}

func TestRemoteHandlers_BlinkingIntervalRange(t *testing.T) {
	tests := []struct {
		value string
		want  uint16
	}{
		{`10`, 10},
		{`60000`, 60000},
		{`500`, 500},
		{`"250"`, 250},
		{`9`, constants.DefaultBlinkingInterval},
		{`60001`, constants.DefaultBlinkingInterval},
		{`0`, constants.DefaultBlinkingInterval},
		{`-5`, constants.DefaultBlinkingInterval},
		{`"fast"`, constants.DefaultBlinkingInterval},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := newRig()
			h := NewRemoteHandlers(r.led, r.fan, r.store, zerolog.Nop())

			h.OnSharedAttributes(map[string]json.RawMessage{constants.AttrBlinkingInterval: json.RawMessage(tt.value)})

			assert.Equal(t, tt.want, r.store.BlinkingInterval())
		})
	}
}

func TestRemoteHandlers_AttributeBatch(t *testing.T) {
	r := newRig()
	h := NewRemoteHandlers(r.led, r.fan, r.store, zerolog.Nop())

	h.OnSharedAttributes(map[string]json.RawMessage{
		constants.AttrFanState: json.RawMessage(`true`),
		constants.AttrLedState: json.RawMessage(`"nope"`),
		"targetHumidity":       json.RawMessage(`60`),
	})

	assert.True(t, r.store.FanState())
	assert.False(t, r.store.LedState(), "undecodable value is ignored")
	assert.Equal(t, 0, r.ledOut.Transitions())
	assert.True(t, r.fan.ConsumeChange())
	assert.True(t, r.led.ConsumeChange(), "both flags are set after a batch")
}
