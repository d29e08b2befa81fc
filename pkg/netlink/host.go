package netlink

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/net"
)

const procWireless = "/proc/net/wireless"

// HostLink observes a network interface managed by the operating system.
// Association itself is left to the system network manager.
type HostLink struct {
	iface        string
	ssid         string
	bssid        string
	channel      int
	wirelessPath string

	interfaces func() ([]net.InterfaceStat, error)
}

// NewHostLink watches iface. ssid, bssid and channel are reported as configured
// since the interface statistics do not expose them.
func NewHostLink(iface, ssid, bssid string, channel int) *HostLink {
	return &HostLink{
		iface:        iface,
		ssid:         ssid,
		bssid:        bssid,
		channel:      channel,
		wirelessPath: procWireless,
		interfaces:   net.Interfaces,
	}
}

func (h *HostLink) Begin(ctx context.Context) error {
	return ctx.Err()
}

func (h *HostLink) Status() Status {
	stat, ok := h.lookup()
	if !ok || !lo.Contains(stat.Flags, "up") {
		return Disconnected
	}
	if ipv4(stat) == "" {
		return Connecting
	}
	return Connected
}

func (h *HostLink) Info() Info {
	info := Info{
		SSID:    h.ssid,
		BSSID:   h.bssid,
		Channel: h.channel,
		RSSI:    h.signalLevel(),
	}
	if stat, ok := h.lookup(); ok {
		info.LocalIP = ipv4(stat)
	}
	return info
}

func (h *HostLink) HardwareAddr() string {
	if stat, ok := h.lookup(); ok {
		return strings.ToUpper(stat.HardwareAddr)
	}
	return ""
}

func (h *HostLink) lookup() (net.InterfaceStat, bool) {
	stats, err := h.interfaces()
	if err != nil {
		return net.InterfaceStat{}, false
	}
	return lo.Find(stats, func(s net.InterfaceStat) bool { return s.Name == h.iface })
}

// ipv4 returns the first IPv4 address of the interface without its prefix length.
func ipv4(stat net.InterfaceStat) string {
	for _, a := range stat.Addrs {
		addr, _, _ := strings.Cut(a.Addr, "/")
		if strings.Count(addr, ".") == 3 {
			return addr
		}
	}
	return ""
}

// signalLevel reads the signal level in dBm from the wireless statistics, or 0.
func (h *HostLink) signalLevel() int {
	f, err := os.Open(h.wirelessPath)
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name, rest, found := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !found || name != h.iface {
			continue
		}
		// status, link quality, signal level, noise, ...
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return 0
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
		if err != nil {
			return 0
		}
		return int(level)
	}
	return 0
}
