package state

import (
	"bytes"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewStore_StartupValues(t *testing.T) {
	s := NewStore()

	assert.False(t, s.LinkConnected())
	assert.False(t, s.SessionConnected())
	assert.False(t, s.LedState())
	assert.False(t, s.FanState())
	assert.Equal(t, uint16(1000), s.BlinkingInterval())
	assert.True(t, math.IsNaN(s.Temperature()))
	assert.True(t, math.IsNaN(s.Humidity()))
	assert.Equal(t, 0.0, s.LightLevel())
	assert.False(t, s.Reading().Valid())
}

func TestStore_SetBlinkingInterval(t *testing.T) {
	tests := []struct {
		name    string
		value   int64
		applied bool
		want    uint16
	}{
		{"below minimum", 9, false, 1000},
		{"minimum", 10, true, 10},
		{"inside range", 2500, true, 2500},
		{"maximum", 60000, true, 60000},
		{"above maximum", 60001, false, 1000},
		{"negative", -5, false, 1000},
		{"beyond uint16", 70000, false, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			assert.Equal(t, tt.applied, s.SetBlinkingInterval(tt.value))
			assert.Equal(t, tt.want, s.BlinkingInterval())
		})
	}
}

func TestStore_ChangeFlagsAreIndependent(t *testing.T) {
	s := NewStore()

	s.MarkLedChanged()
	assert.False(t, s.ConsumeFanChanged(), "fan reporter must not consume the LED change")
	assert.True(t, s.ConsumeLedChanged())
	assert.False(t, s.ConsumeLedChanged(), "flag is consumed once")

	s.MarkFanChanged()
	assert.True(t, s.FanChangePending())
	assert.True(t, s.ConsumeFanChanged())
	assert.False(t, s.FanChangePending())
}

func TestStore_ConsumeIsExactlyOnceUnderContention(t *testing.T) {
	s := NewStore()
	s.MarkLedChanged()

	var wg sync.WaitGroup
	var mu sync.Mutex
	consumed := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.ConsumeLedChanged() {
				mu.Lock()
				consumed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, consumed)
}

func TestStore_OnlineNeedsLinkAndSession(t *testing.T) {
	s := NewStore()
	s.SetSessionConnected(true)
	assert.False(t, s.Online())

	s.SetLinkConnected(true)
	assert.True(t, s.Online())

	s.SetSessionConnected(false)
	assert.False(t, s.Online())
}

func TestStore_Snapshot(t *testing.T) {
	s := NewStore()
	s.SetLinkConnected(true)
	s.SetFanState(true)
	s.SetClimate(24.5, 51.0)
	s.SetLightLevel(812)

	snap := s.Snapshot()

	assert.True(t, snap.LinkConnected)
	assert.True(t, snap.FanState)
	assert.False(t, snap.LedState)
	assert.Equal(t, 24.5, snap.Reading.Temperature)
	assert.Equal(t, 51.0, snap.Reading.Humidity)
	assert.Equal(t, 812.0, snap.Reading.LightLevel)
	assert.True(t, snap.Reading.Valid())
}

func TestStore_SnapshotLogsBeforeFirstReading(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	s := NewStore()
	s.SetLedState(true)
	logger.Info().Object("state", s.Snapshot()).Msg("")

	out := buf.String()
	assert.Contains(t, out, `"led_state":true`)
	assert.Contains(t, out, `"temperature":"NaN"`)
	assert.Contains(t, out, `"humidity":"NaN"`)
}
