package services

import (
	"context"
	"time"

	"github.com/benmeehan/climate-node/internal/actuators"
	"github.com/benmeehan/climate-node/internal/state"
	"github.com/rs/zerolog"
)

// ReporterService publishes an actuator's output level whenever its change
// flag is set and pumps the platform client. The flag is only consumed while
// the session is up, so changes made offline are reported after reconnect.
type ReporterService struct {
	Actuator *actuators.Actuator
	Key      string // attribute the level is reported under
	Backend  Backend
	Store    *state.Store
	Interval time.Duration

	*task
}

// NewReporterService initializes a new ReporterService for actuator.
func NewReporterService(actuator *actuators.Actuator, key string, backend Backend, store *state.Store,
	interval time.Duration, logger zerolog.Logger) *ReporterService {

	return &ReporterService{
		Actuator: actuator,
		Key:      key,
		Backend:  backend,
		Store:    store,
		Interval: interval,
		task:     newTask(actuator.Name+"_reporter", logger),
	}
}

// Start launches the reporting loop in a separate goroutine.
func (r *ReporterService) Start() error {
	return r.start(func(ctx context.Context) {
		every(ctx, r.Interval, false, r.cycle)
	})
}

// Stop gracefully stops the reporter.
func (r *ReporterService) Stop() error {
	return r.stop()
}

func (r *ReporterService) cycle(context.Context) {
	if r.Store.SessionConnected() && r.Actuator.ConsumeChange() {
		r.report()
	}
	if r.Backend.Connected() {
		r.Backend.Loop()
	}
}

func (r *ReporterService) report() {
	level, err := r.Actuator.Level()
	if err != nil {
		r.Actuator.MarkChanged()
		r.logger.Error().Err(err).Msg("Failed to read output level")
		return
	}

	if err := r.Backend.SendAttributes(map[string]any{r.Key: level}); err != nil {
		r.Actuator.MarkChanged()
		r.logger.Warn().Err(err).Msg("Failed to report output level")
		return
	}
	r.logger.Debug().Bool(r.Key, level).Msg("Output level reported")
}
