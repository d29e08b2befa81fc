package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAddr string

func (s staticAddr) HardwareAddr() string { return string(s) }

func TestNewDeviceInfo(t *testing.T) {
	d, err := NewDeviceInfo(staticAddr("24:0a:c4:00:11:22"), "v1.4.0")
	require.NoError(t, err)

	assert.Equal(t, "24:0A:C4:00:11:22", d.GetHardwareID())
	assert.Equal(t, "1.4.0", d.GetFirmwareVersion())
	assert.Equal(t, Identity{MacAddress: "24:0A:C4:00:11:22", FirmwareVersion: "1.4.0"}, d.GetDeviceIdentity())
}

func TestNewDeviceInfo_InvalidVersion(t *testing.T) {
	_, err := NewDeviceInfo(staticAddr(""), "latest")
	assert.Error(t, err)
}
