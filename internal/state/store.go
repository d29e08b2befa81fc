package state

import (
	"math"
	"sync/atomic"

	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/internal/models"
)

// Store holds the process-wide scalars shared by every task. Each field is
// independently atomic; there are no multi-field transactions.
type Store struct {
	linkConnected    atomic.Bool
	sessionConnected atomic.Bool

	ledState atomic.Bool
	fanState atomic.Bool

	ledChanged atomic.Bool
	fanChanged atomic.Bool

	blinkingInterval atomic.Uint32

	temperature atomic.Uint64
	humidity    atomic.Uint64
	lightLevel  atomic.Uint64
}

// NewStore returns a store with startup values: links down, actuators off,
// default blink interval, temperature and humidity NaN, light zero.
func NewStore() *Store {
	s := &Store{}
	s.blinkingInterval.Store(constants.DefaultBlinkingInterval)
	s.temperature.Store(math.Float64bits(math.NaN()))
	s.humidity.Store(math.Float64bits(math.NaN()))
	s.lightLevel.Store(math.Float64bits(0))
	return s
}

func (s *Store) LinkConnected() bool        { return s.linkConnected.Load() }
func (s *Store) SetLinkConnected(v bool)    { s.linkConnected.Store(v) }
func (s *Store) SessionConnected() bool     { return s.sessionConnected.Load() }
func (s *Store) SetSessionConnected(v bool) { s.sessionConnected.Store(v) }

// Online reports whether both the link and the platform session are up.
func (s *Store) Online() bool {
	return s.linkConnected.Load() && s.sessionConnected.Load()
}

func (s *Store) LedState() bool     { return s.ledState.Load() }
func (s *Store) SetLedState(v bool) { s.ledState.Store(v) }
func (s *Store) FanState() bool     { return s.fanState.Load() }
func (s *Store) SetFanState(v bool) { s.fanState.Store(v) }

// MarkLedChanged flags the LED state for the next LED report.
func (s *Store) MarkLedChanged() { s.ledChanged.Store(true) }

// MarkFanChanged flags the fan state for the next fan report.
func (s *Store) MarkFanChanged() { s.fanChanged.Store(true) }

// ConsumeLedChanged clears the LED change flag and reports whether it was set.
func (s *Store) ConsumeLedChanged() bool { return s.ledChanged.CompareAndSwap(true, false) }

// ConsumeFanChanged clears the fan change flag and reports whether it was set.
func (s *Store) ConsumeFanChanged() bool { return s.fanChanged.CompareAndSwap(true, false) }

func (s *Store) LedChangePending() bool { return s.ledChanged.Load() }
func (s *Store) FanChangePending() bool { return s.fanChanged.Load() }

func (s *Store) BlinkingInterval() uint16 { return uint16(s.blinkingInterval.Load()) }

// SetBlinkingInterval stores v if it lies in the accepted range and reports
// whether it was applied.
func (s *Store) SetBlinkingInterval(v int64) bool {
	if v < constants.BlinkingIntervalMin || v > constants.BlinkingIntervalMax {
		return false
	}
	s.blinkingInterval.Store(uint32(v))
	return true
}

func (s *Store) Temperature() float64 { return math.Float64frombits(s.temperature.Load()) }
func (s *Store) Humidity() float64    { return math.Float64frombits(s.humidity.Load()) }
func (s *Store) LightLevel() float64  { return math.Float64frombits(s.lightLevel.Load()) }

// SetClimate stores a temperature/humidity pair. NaN marks a failed read.
func (s *Store) SetClimate(temperature, humidity float64) {
	s.temperature.Store(math.Float64bits(temperature))
	s.humidity.Store(math.Float64bits(humidity))
}

func (s *Store) SetLightLevel(v float64) { s.lightLevel.Store(math.Float64bits(v)) }

// Reading returns the latest readings.
func (s *Store) Reading() models.SensorReading {
	return models.SensorReading{
		Temperature: s.Temperature(),
		Humidity:    s.Humidity(),
		LightLevel:  s.LightLevel(),
	}
}

// Snapshot reads every field once.
func (s *Store) Snapshot() models.NodeSnapshot {
	return models.NodeSnapshot{
		LinkConnected:    s.LinkConnected(),
		SessionConnected: s.SessionConnected(),
		LedState:         s.LedState(),
		FanState:         s.FanState(),
		BlinkingInterval: s.BlinkingInterval(),
		Reading:          s.Reading(),
	}
}
