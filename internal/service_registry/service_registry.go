package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/climate-node/internal/actuators"
	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/internal/registry"
	"github.com/benmeehan/climate-node/internal/services"
	"github.com/benmeehan/climate-node/internal/state"
	"github.com/benmeehan/climate-node/internal/utils"
	"github.com/benmeehan/climate-node/pkg/hal"
	"github.com/benmeehan/climate-node/pkg/identity"
	"github.com/benmeehan/climate-node/pkg/netlink"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/rs/zerolog"
)

// Tier orders task start-up. Every tier-1 task starts before any tier-2 task.
type Tier int

const (
	TierCore Tier = iota + 1
	TierPeripheral
)

type entry struct {
	tier    Tier
	service registry.Service
}

// Components are the drivers and shared objects the tasks are built from.
type Components struct {
	Store      *state.Store
	Link       netlink.Link
	Backend    services.Backend
	DeviceInfo identity.DeviceInfoInterface
	Led        *actuators.Actuator
	Fan        *actuators.Actuator
	Climate    hal.ClimateSensor
	Light      hal.AnalogInput
}

// ServiceRegistry manages the lifecycle of the node's tasks.
type ServiceRegistry struct {
	services *orderedmap.OrderedMap[string, entry]
	started  []string
	Logger   zerolog.Logger
}

// NewServiceRegistry initializes an empty registry.
func NewServiceRegistry(logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services: orderedmap.NewOrderedMap[string, entry](),
		Logger:   logger,
	}
}

// RegisterService adds a task in the given tier.
func (sr *ServiceRegistry) RegisterService(name string, tier Tier, svc registry.Service) {
	if _, exists := sr.services.Get(name); exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services.Set(name, entry{tier: tier, service: svc})
	sr.Logger.Info().Str("service", name).Int("tier", int(tier)).Msg("Registered service")
}

// Names returns the registered task names in start order.
func (sr *ServiceRegistry) Names() []string {
	var names []string
	for _, tier := range []Tier{TierCore, TierPeripheral} {
		for el := sr.services.Front(); el != nil; el = el.Next() {
			if el.Value.tier == tier {
				names = append(names, el.Key)
			}
		}
	}
	return names
}

// StartServices starts tier 1 then tier 2, each in registration order.
// If a task fails to start, the already started ones are stopped.
func (sr *ServiceRegistry) StartServices() error {
	for _, name := range sr.Names() {
		el, _ := sr.services.Get(name)
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := el.service.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			_ = sr.StopServices()
			return fmt.Errorf("start %s: %w", name, err)
		}
		sr.started = append(sr.started, name)
	}
	return nil
}

// StopServices stops the started tasks in reverse start order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.started) - 1; i >= 0; i-- {
		name := sr.started[i]
		el, _ := sr.services.Get(name)
		if err := el.service.Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	sr.started = nil

	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices builds the seven node tasks from config and c.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, c Components) {
	handlers := services.NewRemoteHandlers(c.Led, c.Fan, c.Store, sr.Logger)

	servicesInOrder := []struct {
		name    string
		tier    Tier
		service registry.Service
	}{
		{
			name: "connectivity",
			tier: TierCore,
			service: services.NewConnectivityService(
				c.Link,
				c.Store,
				config.Network.RetryInterval,
				config.Network.PollInterval,
				config.Network.MaxAttempts,
				sr.Logger,
			),
		},
		{
			name: "session",
			tier: TierCore,
			service: services.NewSessionService(
				c.Backend,
				c.Store,
				c.DeviceInfo,
				handlers,
				config.Tasks.SessionInterval,
				sr.Logger,
			),
		},
		{
			name: "sensor",
			tier: TierCore,
			service: services.NewSensorService(
				c.Climate,
				c.Link,
				c.Backend,
				c.Store,
				config.Sensor.Tick,
				config.Sensor.Interval,
				sr.Logger,
			),
		},
		{
			name:    "led_reporter",
			tier:    TierPeripheral,
			service: services.NewReporterService(c.Led, constants.AttrLedState, c.Backend, c.Store, config.Tasks.ReporterInterval, sr.Logger),
		},
		{
			name:    "fan_reporter",
			tier:    TierPeripheral,
			service: services.NewReporterService(c.Fan, constants.AttrFanState, c.Backend, c.Store, config.Tasks.ReporterInterval, sr.Logger),
		},
		{
			name: "safety",
			tier: TierPeripheral,
			service: services.NewSafetyService(
				[]*actuators.Actuator{c.Fan, c.Led},
				c.Store,
				config.Safety.MaxTemperature,
				config.Safety.MinHumidity,
				config.Tasks.SafetyInterval,
				sr.Logger,
			),
		},
		{
			name:    "light",
			tier:    TierPeripheral,
			service: services.NewLightService(c.Light, c.Backend, c.Store, config.Tasks.LightInterval, sr.Logger),
		},
	}

	for _, svc := range servicesInOrder {
		sr.RegisterService(svc.name, svc.tier, svc.service)
	}
	sr.Logger.Info().Strs("services", sr.Names()).Msg("Registered services in start order")
}
