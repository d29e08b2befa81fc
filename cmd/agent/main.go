package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benmeehan/climate-node/internal/actuators"
	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/internal/service_registry"
	"github.com/benmeehan/climate-node/internal/services"
	"github.com/benmeehan/climate-node/internal/state"
	"github.com/benmeehan/climate-node/internal/utils"
	"github.com/benmeehan/climate-node/pkg/file"
	"github.com/benmeehan/climate-node/pkg/hal"
	"github.com/benmeehan/climate-node/pkg/identity"
	"github.com/benmeehan/climate-node/pkg/mqtt"
	"github.com/benmeehan/climate-node/pkg/netlink"
	"github.com/benmeehan/climate-node/pkg/thingsboard"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// Structured JSON logging until the configured level and format are known
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger = newLogger(config)

	// Generate a unique MQTT Client ID by appending a UUID
	config.MQTT.ClientID = config.MQTT.ClientID + "-" + uuid.New().String()
	logger.Info().Str("client_id", config.MQTT.ClientID).Str("firmware", config.FirmwareVersion).Msg("Starting climate node")

	store := state.NewStore()

	link := newLink(config)
	ledOut, fanOut, err := newOutputs(config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open outputs")
	}
	led := actuators.NewLed(ledOut, store, logger)
	fan := actuators.NewFan(fanOut, store, logger)
	climate := newClimateSensor(config)
	light := newLightInput(config)

	deviceInfo, err := identity.NewDeviceInfo(link, config.FirmwareVersion)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to resolve device identity")
	}

	// The transport is created here but connected by the session service
	mqttClient := mqtt.NewMqttService(fileClient)
	err = mqttClient.Initialize(mqtt.Options{
		Broker:           config.Broker(),
		ClientID:         config.MQTT.ClientID,
		Username:         config.MQTT.AccessToken,
		CACertificate:    config.MQTT.CACertificate,
		ConnectTimeout:   config.MQTT.ConnectTimeout,
		KeepAlive:        config.MQTT.KeepAlive,
		OnConnectionLost: services.SessionLostHandler(store, logger),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize MQTT client")
	}

	backend := thingsboard.NewClient(mqttClient, thingsboard.Config{
		QOS:              byte(config.MQTT.QOS),
		ConnectTimeout:   config.MQTT.ConnectTimeout,
		OperationTimeout: config.MQTT.Timeout,
		MaxMessageSize:   config.MQTT.MaxMessageSize,
		Quiesce:          constants.DefaultQuiesce,
	}, logger.With().Str("component", "thingsboard").Logger())

	serviceRegistry := service_registry.NewServiceRegistry(logger)
	serviceRegistry.RegisterServices(config, service_registry.Components{
		Store:      store,
		Link:       link,
		Backend:    backend,
		DeviceInfo: deviceInfo,
		Led:        led,
		Fan:        fan,
		Climate:    climate,
		Light:      light,
	})

	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stopCh

	logger.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Some services did not stop cleanly")
	}

	for _, a := range []*actuators.Actuator{led, fan} {
		if err := a.Set(false); err != nil {
			logger.Error().Err(err).Str("actuator", a.Name).Msg("Failed to drive output low")
		}
		_ = a.Output.Close()
	}
	_ = climate.Close()
	_ = light.Close()

	backend.Disconnect()
	logger.Info().Object("state", store.Snapshot()).Msg("Shutdown complete")
}

func newLogger(config *utils.Config) zerolog.Logger {
	level, _ := zerolog.ParseLevel(config.LogLevel) // validated by LoadConfig
	zerolog.SetGlobalLevel(level)

	if config.LogFormat == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func newLink(config *utils.Config) netlink.Link {
	if config.Network.Driver == constants.DriverSimulated {
		return netlink.NewSimulatedLink(3, "02:00:00:00:00:01", netlink.Info{
			RSSI:    -55,
			Channel: config.Network.Channel,
			BSSID:   config.Network.BSSID,
			LocalIP: "192.168.4.2",
			SSID:    config.Network.SSID,
		})
	}
	return netlink.NewHostLink(config.Network.Interface, config.Network.SSID, config.Network.BSSID, config.Network.Channel)
}

func newOutputs(config *utils.Config) (led, fan hal.DigitalOutput, err error) {
	if config.Hardware.OutputDriver == constants.DriverMemory {
		return hal.NewMemoryOutput(), hal.NewMemoryOutput(), nil
	}

	ledLine, err := hal.NewGPIOOutput(config.Hardware.GPIOChip, config.Hardware.LedPin)
	if err != nil {
		return nil, nil, fmt.Errorf("led: %w", err)
	}
	fanLine, err := hal.NewGPIOOutput(config.Hardware.GPIOChip, config.Hardware.FanPin)
	if err != nil {
		_ = ledLine.Close()
		return nil, nil, fmt.Errorf("fan: %w", err)
	}
	return ledLine, fanLine, nil
}

func newClimateSensor(config *utils.Config) hal.ClimateSensor {
	if config.Sensor.Driver == constants.DriverSimulated {
		return hal.NewSimulatedClimateSensor()
	}
	return hal.NewSerialClimateSensor(config.Sensor.SerialPort, config.Sensor.BaudRate, config.Sensor.ReadTimeout)
}

func newLightInput(config *utils.Config) hal.AnalogInput {
	if config.Hardware.AnalogDriver == constants.DriverSimulated {
		return hal.NewSimulatedAnalogInput(config.Hardware.ADCResolutionBits)
	}
	return hal.NewIIOAnalogInput(config.Hardware.LightADCPath, config.Hardware.ADCResolutionBits)
}
