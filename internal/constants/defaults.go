package constants

import "time"

const (
	// BlinkingIntervalMin and BlinkingIntervalMax bound accepted blinkingInterval values (ms).
	BlinkingIntervalMin = 10
	BlinkingIntervalMax = 60000

	// DefaultBlinkingInterval is the interval before any remote configuration arrives (ms).
	DefaultBlinkingInterval = 1000
)

const (
	DefaultLinkRetryInterval = 5 * time.Second
	DefaultLinkPollInterval  = 1 * time.Second
	DefaultLinkMaxAttempts   = 10

	DefaultSessionPollInterval = 500 * time.Millisecond
	DefaultConnectTimeout      = 10 * time.Second
	DefaultOperationTimeout    = 5 * time.Second
	DefaultMaxMessageSize      = 1024
	DefaultQuiesce             = 250 // ms

	DefaultSensorTick     = 1 * time.Second
	DefaultSensorInterval = 10 * time.Second

	DefaultLightInterval    = 5 * time.Second
	DefaultReporterInterval = 1 * time.Second
	DefaultSafetyInterval   = 3 * time.Second
)

const (
	// DefaultMaxTemperature triggers the safety override when exceeded (°C).
	DefaultMaxTemperature = 30.0

	// DefaultMinHumidity triggers the safety override when undershot (%RH).
	DefaultMinHumidity = 45.0

	// DefaultADCResolutionBits gives raw light readings in 0..4095.
	DefaultADCResolutionBits = 12
)

// Driver names accepted in configuration.
const (
	DriverSimulated = "simulated"
	DriverSerial    = "serial"
	DriverHost      = "host"
	DriverGPIO      = "gpio"
	DriverMemory    = "memory"
	DriverIIO       = "iio"
)
