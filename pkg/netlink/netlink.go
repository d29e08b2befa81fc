// Package netlink reports the state of the node's network link and the
// diagnostics published alongside telemetry.
package netlink

import "context"

// Status is the connection state of a link or session.
type Status int

const (
	Disconnected Status = iota
	Connecting
	Connected
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Info carries the link diagnostics published as attributes.
type Info struct {
	RSSI    int    `json:"rssi"`
	Channel int    `json:"channel"`
	BSSID   string `json:"bssid"`
	LocalIP string `json:"localIp"`
	SSID    string `json:"ssid"`
}

// Link is the network link underneath the platform session.
type Link interface {
	// Begin starts association. It does not wait for the link to come up.
	Begin(ctx context.Context) error
	// Status polls the current link state.
	Status() Status
	// Info returns the current diagnostics.
	Info() Info
	// HardwareAddr returns the MAC address of the link interface.
	HardwareAddr() string
}
