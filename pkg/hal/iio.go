package hal

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// IIOAnalogInput reads a raw ADC channel exposed by the Linux IIO subsystem,
// e.g. /sys/bus/iio/devices/iio:device0/in_voltage1_raw.
type IIOAnalogInput struct {
	path string
	max  int
}

// NewIIOAnalogInput clamps readings to the given ADC resolution.
func NewIIOAnalogInput(path string, bits int) *IIOAnalogInput {
	return &IIOAnalogInput{path: path, max: MaxADCValue(bits)}
}

func (a *IIOAnalogInput) Read() (int, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", a.path, err)
	}
	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", a.path, err)
	}
	return lo.Clamp(raw, 0, a.max), nil
}

func (a *IIOAnalogInput) Close() error { return nil }
