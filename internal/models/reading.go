package models

import "math"

// SensorReading is the latest set of environmental measurements.
// Temperature and Humidity are NaN until the first successful read.
type SensorReading struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %RH
	LightLevel  float64 `json:"light"`       // raw ADC units
}

// Valid reports whether temperature and humidity hold real values.
func (r SensorReading) Valid() bool {
	return !math.IsNaN(r.Temperature) && !math.IsNaN(r.Humidity)
}
