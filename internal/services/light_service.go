package services

import (
	"context"
	"time"

	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/internal/state"
	"github.com/benmeehan/climate-node/pkg/hal"
	"github.com/rs/zerolog"
)

// LightService samples the light sensor on a fixed period.
type LightService struct {
	Input    hal.AnalogInput
	Backend  Backend
	Store    *state.Store
	Interval time.Duration

	*task
}

// NewLightService initializes a new LightService.
func NewLightService(input hal.AnalogInput, backend Backend, store *state.Store, interval time.Duration,
	logger zerolog.Logger) *LightService {

	return &LightService{
		Input:    input,
		Backend:  backend,
		Store:    store,
		Interval: interval,
		task:     newTask("light", logger),
	}
}

// Start launches the sampling loop in a separate goroutine.
func (l *LightService) Start() error {
	return l.start(func(ctx context.Context) {
		every(ctx, l.Interval, false, l.sample)
	})
}

// Stop gracefully stops the light service.
func (l *LightService) Stop() error {
	return l.stop()
}

func (l *LightService) sample(context.Context) {
	raw, err := l.Input.Read()
	if err != nil {
		l.logger.Error().Err(err).Msg("Failed to read light level")
		return
	}
	l.Store.SetLightLevel(float64(raw))

	if !l.Store.Online() {
		return
	}

	if err := l.Backend.SendTelemetry(map[string]any{constants.TelemetryLight: raw}); err != nil {
		l.logger.Warn().Err(err).Msg("Failed to publish light telemetry")
	}
	if err := l.Backend.SendAttributes(map[string]any{constants.AttrLight: raw}); err != nil {
		l.logger.Warn().Err(err).Msg("Failed to publish light attribute")
	}
}
