package constants

// Telemetry keys published to the platform.
const (
	TelemetryTemperature = "temperature"
	TelemetryHumidity    = "humidity"
	TelemetryLight       = "light"
)

// Client attribute keys published to the platform.
const (
	AttrMacAddress      = "macAddress"
	AttrFirmwareVersion = "firmwareVersion"
	AttrRSSI            = "rssi"
	AttrChannel         = "channel"
	AttrBSSID           = "bssid"
	AttrLocalIP         = "localIp"
	AttrSSID            = "ssid"
	AttrLight           = "light"
)

// Shared attribute keys. LED and fan state are reported back under the same keys.
const (
	AttrLedState         = "ledState"
	AttrFanState         = "fanState"
	AttrBlinkingInterval = "blinkingInterval"
)

// SharedAttributeKeys is the recognized key set for shared attribute
// subscription and the one-time request after a handshake.
var SharedAttributeKeys = []string{AttrLedState, AttrBlinkingInterval, AttrFanState}

// RPC method names accepted by the node.
const (
	MethodSetLedSwitchValue = "setLedSwitchValue"
	MethodSetFanSwitchValue = "setFanSwitchValue"
)
