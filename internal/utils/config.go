package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/benmeehan/climate-node/internal/constants"
	"github.com/benmeehan/climate-node/pkg/file"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// EnvPrefix prefixes every environment override, e.g. NODE_MQTT_ACCESS_TOKEN.
const EnvPrefix = "NODE_"

// Config represents the structure of the configuration file.
type Config struct {
	LogLevel        string `yaml:"log_level" env:"LOG_LEVEL"`               // zerolog level name
	LogFormat       string `yaml:"log_format" env:"LOG_FORMAT"`             // "json" or "console"
	FirmwareVersion string `yaml:"firmware_version" env:"FIRMWARE_VERSION"` // Semantic version reported as firmwareVersion

	MQTT struct {
		Host           string        `yaml:"host" env:"HOST"`                       // Platform host
		Port           int           `yaml:"port" env:"PORT"`                       // Platform MQTT port
		AccessToken    string        `yaml:"access_token" env:"ACCESS_TOKEN"`       // Device access token, sent as username
		ClientID       string        `yaml:"client_id" env:"CLIENT_ID"`             // MQTT client ID prefix
		CACertificate  string        `yaml:"ca_certificate" env:"CA_CERTIFICATE"`   // Path to the CA certificate, enables TLS
		QOS            int           `yaml:"qos" env:"QOS"`                         // QoS for publish and subscribe
		ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"` // Timeout for connect
		Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`                 // Timeout for publish and subscribe
		KeepAlive      time.Duration `yaml:"keep_alive" env:"KEEP_ALIVE"`
		MaxMessageSize int           `yaml:"max_message_size" env:"MAX_MESSAGE_SIZE"` // Larger inbound payloads are dropped
	} `yaml:"mqtt" envPrefix:"MQTT_"`

	Network struct {
		Driver        string        `yaml:"driver" env:"DRIVER"`       // "host" or "simulated"
		Interface     string        `yaml:"interface" env:"INTERFACE"` // e.g. wlan0
		SSID          string        `yaml:"ssid" env:"SSID"`
		BSSID         string        `yaml:"bssid" env:"BSSID"`
		Channel       int           `yaml:"channel" env:"CHANNEL"`
		MaxAttempts   int           `yaml:"max_attempts" env:"MAX_ATTEMPTS"`     // Status polls per association cycle
		PollInterval  time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`   // Wait between status polls
		RetryInterval time.Duration `yaml:"retry_interval" env:"RETRY_INTERVAL"` // Period of the connectivity cycle
	} `yaml:"network" envPrefix:"NETWORK_"`

	Hardware struct {
		OutputDriver      string `yaml:"output_driver" env:"OUTPUT_DRIVER"` // "gpio" or "memory"
		GPIOChip          string `yaml:"gpio_chip" env:"GPIO_CHIP"`
		LedPin            int    `yaml:"led_pin" env:"LED_PIN"`
		FanPin            int    `yaml:"fan_pin" env:"FAN_PIN"`
		AnalogDriver      string `yaml:"analog_driver" env:"ANALOG_DRIVER"` // "iio" or "simulated"
		LightADCPath      string `yaml:"light_adc_path" env:"LIGHT_ADC_PATH"`
		ADCResolutionBits int    `yaml:"adc_resolution_bits" env:"ADC_RESOLUTION_BITS"`
	} `yaml:"hardware" envPrefix:"HARDWARE_"`

	Sensor struct {
		Driver      string        `yaml:"driver" env:"DRIVER"` // "serial" or "simulated"
		SerialPort  string        `yaml:"serial_port" env:"SERIAL_PORT"`
		BaudRate    int           `yaml:"baud_rate" env:"BAUD_RATE"`
		ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
		Interval    time.Duration `yaml:"interval" env:"INTERVAL"` // Minimum time between samples
		Tick        time.Duration `yaml:"tick" env:"TICK"`         // How often the interval is checked
	} `yaml:"sensor" envPrefix:"SENSOR_"`

	Tasks struct {
		SessionInterval  time.Duration `yaml:"session_interval" env:"SESSION_INTERVAL"`
		LightInterval    time.Duration `yaml:"light_interval" env:"LIGHT_INTERVAL"`
		ReporterInterval time.Duration `yaml:"reporter_interval" env:"REPORTER_INTERVAL"`
		SafetyInterval   time.Duration `yaml:"safety_interval" env:"SAFETY_INTERVAL"`
	} `yaml:"tasks" envPrefix:"TASKS_"`

	Safety struct {
		MaxTemperature float64 `yaml:"max_temperature" env:"MAX_TEMPERATURE"` // °C, strictly above triggers
		MinHumidity    float64 `yaml:"min_humidity" env:"MIN_HUMIDITY"`       // %RH, strictly below triggers
	} `yaml:"safety" envPrefix:"SAFETY_"`
}

// LoadConfig loads the YAML configuration from the specified file, applies
// environment overrides and defaults, and validates the result.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	if err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyDefaults fills every unset value.
func (c *Config) ApplyDefaults() {
	setDefault(&c.LogLevel, "info")
	setDefault(&c.LogFormat, "json")
	setDefault(&c.FirmwareVersion, "0.0.0")

	setDefault(&c.MQTT.Port, 1883)
	setDefault(&c.MQTT.ClientID, "climate-node")
	setDefault(&c.MQTT.ConnectTimeout, constants.DefaultConnectTimeout)
	setDefault(&c.MQTT.Timeout, constants.DefaultOperationTimeout)
	setDefault(&c.MQTT.KeepAlive, 30*time.Second)
	setDefault(&c.MQTT.MaxMessageSize, constants.DefaultMaxMessageSize)

	setDefault(&c.Network.Driver, constants.DriverHost)
	setDefault(&c.Network.Interface, "wlan0")
	setDefault(&c.Network.MaxAttempts, constants.DefaultLinkMaxAttempts)
	setDefault(&c.Network.PollInterval, constants.DefaultLinkPollInterval)
	setDefault(&c.Network.RetryInterval, constants.DefaultLinkRetryInterval)

	setDefault(&c.Hardware.OutputDriver, constants.DriverGPIO)
	setDefault(&c.Hardware.GPIOChip, "gpiochip0")
	setDefault(&c.Hardware.AnalogDriver, constants.DriverIIO)
	setDefault(&c.Hardware.ADCResolutionBits, constants.DefaultADCResolutionBits)

	setDefault(&c.Sensor.Driver, constants.DriverSerial)
	setDefault(&c.Sensor.BaudRate, 9600)
	setDefault(&c.Sensor.Interval, constants.DefaultSensorInterval)
	setDefault(&c.Sensor.Tick, constants.DefaultSensorTick)

	setDefault(&c.Tasks.SessionInterval, constants.DefaultSessionPollInterval)
	setDefault(&c.Tasks.LightInterval, constants.DefaultLightInterval)
	setDefault(&c.Tasks.ReporterInterval, constants.DefaultReporterInterval)
	setDefault(&c.Tasks.SafetyInterval, constants.DefaultSafetyInterval)

	setDefault(&c.Safety.MaxTemperature, constants.DefaultMaxTemperature)
	setDefault(&c.Safety.MinHumidity, constants.DefaultMinHumidity)
}

// Validate checks values that cannot be defaulted. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := semver.NewVersion(c.FirmwareVersion); err != nil {
		errs = append(errs, fmt.Errorf("firmware_version %q: %w", c.FirmwareVersion, err))
	}
	if c.MQTT.Host == "" {
		errs = append(errs, errors.New("mqtt.host is required"))
	}
	if c.MQTT.AccessToken == "" {
		errs = append(errs, errors.New("mqtt.access_token is required"))
	}
	if c.MQTT.QOS < 0 || c.MQTT.QOS > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos %d out of range", c.MQTT.QOS))
	}

	errs = append(errs, oneOf("network.driver", c.Network.Driver, constants.DriverHost, constants.DriverSimulated))
	errs = append(errs, oneOf("hardware.output_driver", c.Hardware.OutputDriver, constants.DriverGPIO, constants.DriverMemory))
	errs = append(errs, oneOf("hardware.analog_driver", c.Hardware.AnalogDriver, constants.DriverIIO, constants.DriverSimulated))
	errs = append(errs, oneOf("sensor.driver", c.Sensor.Driver, constants.DriverSerial, constants.DriverSimulated))

	if c.Hardware.OutputDriver == constants.DriverGPIO && c.Hardware.LedPin == c.Hardware.FanPin {
		errs = append(errs, fmt.Errorf("hardware.led_pin and hardware.fan_pin are both %d", c.Hardware.LedPin))
	}
	if c.Hardware.AnalogDriver == constants.DriverIIO && c.Hardware.LightADCPath == "" {
		errs = append(errs, errors.New("hardware.light_adc_path is required for the iio driver"))
	}
	if c.Sensor.Driver == constants.DriverSerial && c.Sensor.SerialPort == "" {
		errs = append(errs, errors.New("sensor.serial_port is required for the serial driver"))
	}

	return errors.Join(errs...)
}

// Broker returns the broker URL. A configured CA certificate selects ssl://.
func (c *Config) Broker() string {
	scheme := "tcp"
	if c.MQTT.CACertificate != "" {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.Host, c.MQTT.Port)
}

func oneOf(field, value string, allowed ...string) error {
	if _, ok := SliceToSet(allowed)[value]; ok {
		return nil
	}
	return fmt.Errorf("%s %q: must be one of %v", field, value, allowed)
}

func setDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}
