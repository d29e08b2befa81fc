package hal

import (
	"context"
	"math/rand/v2"
	"sync"
)

// MemoryOutput is an in-process output line. It counts level transitions so
// callers can observe redundant writes.
type MemoryOutput struct {
	mu          sync.Mutex
	level       bool
	transitions int
}

// NewMemoryOutput returns a low output.
func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{}
}

func (m *MemoryOutput) Set(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.level != on {
		m.transitions++
	}
	m.level = on
	return nil
}

func (m *MemoryOutput) Get() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level, nil
}

// Transitions returns the number of level changes since creation.
func (m *MemoryOutput) Transitions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitions
}

func (m *MemoryOutput) Close() error { return nil }

// SimulatedAnalogInput returns uniformly distributed raw samples.
type SimulatedAnalogInput struct {
	max int
}

// NewSimulatedAnalogInput returns samples in 0..MaxADCValue(bits).
func NewSimulatedAnalogInput(bits int) *SimulatedAnalogInput {
	return &SimulatedAnalogInput{max: MaxADCValue(bits)}
}

func (s *SimulatedAnalogInput) Read() (int, error) {
	return rand.IntN(s.max + 1), nil
}

func (s *SimulatedAnalogInput) Close() error { return nil }

// SimulatedClimateSensor produces pseudo-random samples in 20.0–39.9 °C and
// 30.0–69.9 %RH at 0.1 resolution. It is only used when the configuration
// explicitly selects the simulated driver.
type SimulatedClimateSensor struct{}

func NewSimulatedClimateSensor() *SimulatedClimateSensor {
	return &SimulatedClimateSensor{}
}

func (s *SimulatedClimateSensor) Read(ctx context.Context) (Climate, error) {
	if err := ctx.Err(); err != nil {
		return FailedClimate(), err
	}
	return Climate{
		Temperature: float64(rand.IntN(200)+200) / 10.0,
		Humidity:    float64(rand.IntN(400)+300) / 10.0,
	}, nil
}

func (s *SimulatedClimateSensor) Close() error { return nil }
