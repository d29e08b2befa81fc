// Package hal provides the local I/O used by the node: digital outputs for the
// actuators, an analog input for the light sensor and a temperature/humidity
// sensor. Each has a hardware-backed and a simulated implementation.
package hal

import (
	"context"
	"errors"
	"math"
)

// ErrNoReading is returned by a climate sensor that produced no usable sample.
var ErrNoReading = errors.New("no sensor reading available")

// DigitalOutput drives a single output line.
type DigitalOutput interface {
	Set(on bool) error
	Get() (bool, error)
	Close() error
}

// AnalogInput reads one raw ADC sample.
type AnalogInput interface {
	Read() (int, error)
	Close() error
}

// Climate is a single temperature/humidity sample.
type Climate struct {
	Temperature float64
	Humidity    float64
}

// FailedClimate marks a failed sensor read.
func FailedClimate() Climate {
	return Climate{Temperature: math.NaN(), Humidity: math.NaN()}
}

// ClimateSensor reads temperature and humidity.
type ClimateSensor interface {
	Read(ctx context.Context) (Climate, error)
	Close() error
}

// MaxADCValue returns the largest raw value for an ADC of the given resolution.
func MaxADCValue(bits int) int {
	if bits <= 0 || bits > 16 {
		bits = 12
	}
	return 1<<bits - 1
}
