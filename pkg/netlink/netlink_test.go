package netlink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shirou/gopsutil/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostLinkWith(t *testing.T, stats []net.InterfaceStat, err error) *HostLink {
	t.Helper()
	h := NewHostLink("wlan0", "greenhouse", "AA:BB:CC:DD:EE:FF", 6)
	h.interfaces = func() ([]net.InterfaceStat, error) { return stats, err }
	h.wirelessPath = filepath.Join(t.TempDir(), "wireless")
	return h
}

func TestHostLink_Status(t *testing.T) {
	up := net.InterfaceStat{
		Name:         "wlan0",
		HardwareAddr: "24:0a:c4:12:34:56",
		Flags:        []string{"up", "broadcast"},
		Addrs:        []net.InterfaceAddr{{Addr: "fe80::1/64"}, {Addr: "192.168.1.42/24"}},
	}
	noAddr := net.InterfaceStat{Name: "wlan0", Flags: []string{"up"}}
	down := net.InterfaceStat{Name: "wlan0", Flags: []string{"broadcast"}}

	assert.Equal(t, Connected, hostLinkWith(t, []net.InterfaceStat{up}, nil).Status())
	assert.Equal(t, Connecting, hostLinkWith(t, []net.InterfaceStat{noAddr}, nil).Status())
	assert.Equal(t, Disconnected, hostLinkWith(t, []net.InterfaceStat{down}, nil).Status())
	assert.Equal(t, Disconnected, hostLinkWith(t, nil, nil).Status())
	assert.Equal(t, Disconnected, hostLinkWith(t, nil, errors.New("boom")).Status())
}

func TestHostLink_InfoAndHardwareAddr(t *testing.T) {
	stat := net.InterfaceStat{
		Name:         "wlan0",
		HardwareAddr: "24:0a:c4:12:34:56",
		Flags:        []string{"up"},
		Addrs:        []net.InterfaceAddr{{Addr: "10.0.0.7/8"}},
	}
	h := hostLinkWith(t, []net.InterfaceStat{stat}, nil)

	wireless := "Inter-| sta-|   Quality        |   Discarded packets\n" +
		" face | tus | link level noise |  nwid  crypt   frag\n" +
		" wlan0: 0000   54.  -56.  -256        0      0      0\n"
	require.NoError(t, os.WriteFile(h.wirelessPath, []byte(wireless), 0600))

	info := h.Info()
	assert.Equal(t, "10.0.0.7", info.LocalIP)
	assert.Equal(t, -56, info.RSSI)
	assert.Equal(t, "greenhouse", info.SSID)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", info.BSSID)
	assert.Equal(t, 6, info.Channel)
	assert.Equal(t, "24:0A:C4:12:34:56", h.HardwareAddr())
}

func TestHostLink_NoWirelessStats(t *testing.T) {
	h := hostLinkWith(t, nil, nil)
	assert.Equal(t, 0, h.Info().RSSI)
	assert.Equal(t, "", h.HardwareAddr())
}

func TestSimulatedLink_Lifecycle(t *testing.T) {
	l := NewSimulatedLink(2, "02:00:00:00:00:01", Info{SSID: "sim"})

	assert.Equal(t, Disconnected, l.Status())
	require.NoError(t, l.Begin(context.Background()))
	assert.Equal(t, Connecting, l.Status())
	assert.Equal(t, Connected, l.Status())
	assert.Equal(t, Connected, l.Status())

	l.Drop()
	assert.Equal(t, Disconnected, l.Status())
}

func TestSimulatedLink_Failing(t *testing.T) {
	l := NewSimulatedLink(1, "", Info{})
	l.SetFailing(true)
	require.NoError(t, l.Begin(context.Background()))
	assert.Equal(t, Disconnected, l.Status())
	assert.Equal(t, Disconnected, l.Status())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "disconnected", Disconnected.String())
}
