package models

import "github.com/rs/zerolog"

// NodeSnapshot is a field-by-field read of the shared state. Fields are read
// independently, so the snapshot is not guaranteed to be consistent across fields.
type NodeSnapshot struct {
	LinkConnected    bool          `json:"link_connected"`
	SessionConnected bool          `json:"session_connected"`
	LedState         bool          `json:"led_state"`
	FanState         bool          `json:"fan_state"`
	BlinkingInterval uint16        `json:"blinking_interval"`
	Reading          SensorReading `json:"reading"`
}

// MarshalZerologObject lets a snapshot be logged with Event.Object. Unlike
// encoding/json, zerolog writes NaN readings instead of failing.
func (s NodeSnapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("link_connected", s.LinkConnected).
		Bool("session_connected", s.SessionConnected).
		Bool("led_state", s.LedState).
		Bool("fan_state", s.FanState).
		Uint16("blinking_interval", s.BlinkingInterval).
		Float64("temperature", s.Reading.Temperature).
		Float64("humidity", s.Reading.Humidity).
		Float64("light", s.Reading.LightLevel)
}
