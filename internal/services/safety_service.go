package services

import (
	"context"
	"time"

	"github.com/benmeehan/climate-node/internal/actuators"
	"github.com/benmeehan/climate-node/internal/state"
	"github.com/rs/zerolog"
)

// SafetyService forces the fan and the LED on while the climate is outside
// the thresholds and off otherwise. NaN readings never trigger.
type SafetyService struct {
	Actuators      []*actuators.Actuator
	Store          *state.Store
	MaxTemperature float64
	MinHumidity    float64
	Interval       time.Duration

	*task
}

// NewSafetyService initializes a new SafetyService driving outputs.
func NewSafetyService(outputs []*actuators.Actuator, store *state.Store, maxTemperature, minHumidity float64,
	interval time.Duration, logger zerolog.Logger) *SafetyService {

	return &SafetyService{
		Actuators:      outputs,
		Store:          store,
		MaxTemperature: maxTemperature,
		MinHumidity:    minHumidity,
		Interval:       interval,
		task:           newTask("safety", logger),
	}
}

// Start launches the monitoring loop in a separate goroutine.
func (s *SafetyService) Start() error {
	return s.start(func(ctx context.Context) {
		every(ctx, s.Interval, false, s.check)
	})
}

// Stop gracefully stops the safety service.
func (s *SafetyService) Stop() error {
	return s.stop()
}

// Triggered reports whether temperature or humidity is outside the thresholds.
func (s *SafetyService) Triggered(temperature, humidity float64) bool {
	return temperature > s.MaxTemperature || humidity < s.MinHumidity
}

func (s *SafetyService) check(context.Context) {
	reading := s.Store.Reading()
	on := s.Triggered(reading.Temperature, reading.Humidity)

	for _, a := range s.Actuators {
		wrote, err := a.Apply(on)
		if err != nil {
			s.logger.Error().Err(err).Str("actuator", a.Name).Msg("Failed to apply safety override")
			continue
		}
		if wrote {
			s.logger.Info().
				Str("actuator", a.Name).
				Bool("on", on).
				Float64("temperature", reading.Temperature).
				Float64("humidity", reading.Humidity).
				Msg("Safety override applied")
		}
	}
}
