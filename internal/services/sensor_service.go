package services

import (
	"context"
	"time"

	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/internal/state"
	"github.com/benmeehan/climate-node/pkg/hal"
	"github.com/benmeehan/climate-node/pkg/netlink"
	"github.com/rs/zerolog"
)

// SensorService samples temperature and humidity, publishes them as
// telemetry and sends the link diagnostics as attributes.
type SensorService struct {
	Sensor   hal.ClimateSensor
	Link     netlink.Link
	Backend  Backend
	Store    *state.Store
	Tick     time.Duration // how often the elapsed time is checked
	Interval time.Duration // a sample is taken once more than Interval has passed

	now        func() time.Time
	lastSample time.Time

	*task
}

// NewSensorService initializes a new SensorService.
func NewSensorService(sensor hal.ClimateSensor, link netlink.Link, backend Backend, store *state.Store,
	tick, interval time.Duration, logger zerolog.Logger) *SensorService {

	return &SensorService{
		Sensor:   sensor,
		Link:     link,
		Backend:  backend,
		Store:    store,
		Tick:     tick,
		Interval: interval,
		now:      time.Now,
		task:     newTask("sensor", logger),
	}
}

// Start launches the sampling loop in a separate goroutine.
func (s *SensorService) Start() error {
	return s.start(func(ctx context.Context) {
		s.lastSample = s.now()
		every(ctx, s.Tick, false, s.tick)
	})
}

// Stop gracefully stops the sensor service.
func (s *SensorService) Stop() error {
	return s.stop()
}

func (s *SensorService) tick(ctx context.Context) {
	now := s.now()
	if now.Sub(s.lastSample) <= s.Interval {
		return
	}
	s.lastSample = now
	s.sample(ctx)
}

// sample reads the sensor once. A failed read stores NaN and skips the
// telemetry, the diagnostics are still sent.
func (s *SensorService) sample(ctx context.Context) {
	climate, err := s.Sensor.Read(ctx)
	if err != nil {
		climate = hal.FailedClimate()
		s.logger.Error().Err(err).Msg("Failed to read temperature and humidity")
	}
	s.Store.SetClimate(climate.Temperature, climate.Humidity)

	if !s.Store.Online() {
		return
	}

	if err == nil {
		s.logger.Debug().
			Float64("temperature", climate.Temperature).
			Float64("humidity", climate.Humidity).
			Msg("Climate sampled")
		err := s.Backend.SendTelemetry(map[string]any{
			constants.TelemetryTemperature: climate.Temperature,
			constants.TelemetryHumidity:    climate.Humidity,
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish climate telemetry")
		}
	}

	info := s.Link.Info()
	err = s.Backend.SendAttributes(map[string]any{
		constants.AttrRSSI:    info.RSSI,
		constants.AttrChannel: info.Channel,
		constants.AttrBSSID:   info.BSSID,
		constants.AttrLocalIP: info.LocalIP,
		constants.AttrSSID:    info.SSID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to publish link diagnostics")
	}
}
