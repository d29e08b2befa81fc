package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/internal/mocks"
	"github.com/benmeehan/climate-node/pkg/hal"
	"github.com/benmeehan/climate-node/pkg/netlink"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLinkInfo = netlink.Info{RSSI: -61, Channel: 6, BSSID: "AA:BB:CC:DD:EE:FF", LocalIP: "192.168.4.2", SSID: "greenhouse"}

func diagnostics() map[string]any {
	return map[string]any{
		constants.AttrRSSI:    -61,
		constants.AttrChannel: 6,
		constants.AttrBSSID:   "AA:BB:CC:DD:EE:FF",
		constants.AttrLocalIP: "192.168.4.2",
		constants.AttrSSID:    "greenhouse",
	}
}

func newTestSensor(r *rig, sensor hal.ClimateSensor, backend Backend) *SensorService {
	link := netlink.NewSimulatedLink(1, "", testLinkInfo)
	return NewSensorService(sensor, link, backend, r.store, time.Second, 10*time.Second, zerolog.Nop())
}

func TestSensorService_ElapsedTimeGating(t *testing.T) {
	r := newRig()
	sensor := &stubClimate{climate: hal.Climate{Temperature: 24, Humidity: 55}}
	s := newTestSensor(r, sensor, new(mocks.MockBackend))

	start := time.Unix(1000, 0)
	clock := start
	s.now = func() time.Time { return clock }
	s.lastSample = start

	clock = start.Add(10 * time.Second)
	s.tick(context.Background())
	assert.Equal(t, 0, sensor.Reads(), "exactly the interval does not fire")

	clock = start.Add(11 * time.Second)
	s.tick(context.Background())
	assert.Equal(t, 1, sensor.Reads())

	clock = start.Add(12 * time.Second)
	s.tick(context.Background())
	assert.Equal(t, 1, sensor.Reads())
}

func TestSensorService_PublishesWhenOnline(t *testing.T) {
	r := newRig()
	r.online()
	backend := new(mocks.MockBackend)
	backend.On("SendTelemetry", map[string]any{
		constants.TelemetryTemperature: 24.5,
		constants.TelemetryHumidity:    51.0,
	}).Return(nil)
	backend.On("SendAttributes", diagnostics()).Return(nil)

	s := newTestSensor(r, &stubClimate{climate: hal.Climate{Temperature: 24.5, Humidity: 51}}, backend)
	s.sample(context.Background())

	assert.Equal(t, 24.5, r.store.Temperature())
	assert.Equal(t, 51.0, r.store.Humidity())
	backend.AssertExpectations(t)
}

func TestSensorService_OfflineOnlyStores(t *testing.T) {
	r := newRig()
	r.store.SetLinkConnected(true)
	backend := new(mocks.MockBackend)

	s := newTestSensor(r, &stubClimate{climate: hal.Climate{Temperature: 22, Humidity: 60}}, backend)
	s.sample(context.Background())

	assert.Equal(t, 22.0, r.store.Temperature())
	backend.AssertNotCalled(t, "SendTelemetry", mock.Anything)
	backend.AssertNotCalled(t, "SendAttributes", mock.Anything)
}

func TestSensorService_FailedReadSkipsTelemetry(t *testing.T) {
	r := newRig()
	r.online()
	r.store.SetClimate(25, 50)
	backend := new(mocks.MockBackend)
	backend.On("SendAttributes", diagnostics()).Return(nil)

	s := newTestSensor(r, &stubClimate{err: hal.ErrNoReading}, backend)
	s.sample(context.Background())

	assert.True(t, math.IsNaN(r.store.Temperature()))
	assert.True(t, math.IsNaN(r.store.Humidity()))
	backend.AssertNotCalled(t, "SendTelemetry", mock.Anything)
	backend.AssertExpectations(t)
}

func TestSensorService_PublishErrorsAreNotFatal(t *testing.T) {
	r := newRig()
	r.online()
	backend := new(mocks.MockBackend)
	backend.On("SendTelemetry", mock.Anything).Return(errors.New("not connected"))
	backend.On("SendAttributes", mock.Anything).Return(errors.New("not connected"))

	s := newTestSensor(r, &stubClimate{climate: hal.Climate{Temperature: 20, Humidity: 50}}, backend)

	assert.NotPanics(t, func() { s.sample(context.Background()) })
	assert.Equal(t, 20.0, r.store.Temperature())
}

func TestSensorService_SecondStartKeepsSampleClock(t *testing.T) {
	r := newRig()
	s := newTestSensor(r, &stubClimate{}, new(mocks.MockBackend))

	first := time.Unix(1000, 0)
	s.now = func() time.Time { return first }

	require.NoError(t, s.Start())
	assert.EqualError(t, s.Start(), "sensor service is already running")
	require.NoError(t, s.Stop())

	assert.Equal(t, first, s.lastSample)
}
