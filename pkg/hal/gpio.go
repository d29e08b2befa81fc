package hal

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

const gpioConsumer = "climate-node"

// GPIOOutput drives a line on a Linux GPIO character device.
type GPIOOutput struct {
	mu   sync.Mutex
	line *gpiocdev.Line
}

// NewGPIOOutput requests the line at offset on chip (e.g. "gpiochip0") as an
// output initialised low.
func NewGPIOOutput(chip string, offset int) (*GPIOOutput, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(gpioConsumer))
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", chip, offset, err)
	}
	return &GPIOOutput{line: line}, nil
}

func (g *GPIOOutput) Set(on bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := 0
	if on {
		v = 1
	}
	return g.line.SetValue(v)
}

func (g *GPIOOutput) Get() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, err := g.line.Value()
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// Close drives the line low and releases it.
func (g *GPIOOutput) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.line.SetValue(0)
	return g.line.Close()
}
