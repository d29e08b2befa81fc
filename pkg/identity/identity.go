package identity

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Identity holds what the node reports about itself after every handshake.
type Identity struct {
	MacAddress      string `json:"macAddress"`
	FirmwareVersion string `json:"firmwareVersion"`
}

// HardwareAddressSource yields the network interface's hardware address.
type HardwareAddressSource interface {
	HardwareAddr() string
}

// DeviceInfoInterface defines methods for reading the device identity.
type DeviceInfoInterface interface {
	GetHardwareID() string
	GetFirmwareVersion() string
	GetDeviceIdentity() Identity
}

// DeviceInfo resolves the node identity from the link and the build version.
type DeviceInfo struct {
	link    HardwareAddressSource
	version *semver.Version
}

// NewDeviceInfo validates firmwareVersion and returns the device info.
func NewDeviceInfo(link HardwareAddressSource, firmwareVersion string) (*DeviceInfo, error) {
	v, err := semver.NewVersion(firmwareVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid firmware version %q: %w", firmwareVersion, err)
	}
	return &DeviceInfo{link: link, version: v}, nil
}

// GetHardwareID returns the upper-case MAC address of the link. It is read on
// every call since the interface may only appear after association.
func (d *DeviceInfo) GetHardwareID() string {
	return strings.ToUpper(d.link.HardwareAddr())
}

// GetFirmwareVersion returns the canonical version string.
func (d *DeviceInfo) GetFirmwareVersion() string {
	return d.version.String()
}

// GetDeviceIdentity returns the current device Identity.
func (d *DeviceInfo) GetDeviceIdentity() Identity {
	return Identity{
		MacAddress:      d.GetHardwareID(),
		FirmwareVersion: d.GetFirmwareVersion(),
	}
}
