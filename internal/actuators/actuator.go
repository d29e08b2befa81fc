// Package actuators binds each digital output to its shadow state and its
// change flag in the shared store. All writes to actuator state go through here.
package actuators

import (
	"fmt"
	"sync"

	"github.com/benmeehan/climate-node/internal/state"
	"github.com/benmeehan/climate-node/pkg/hal"
	"github.com/rs/zerolog"
)

// Actuator is one remotely and locally controlled output.
type Actuator struct {
	Name   string
	Output hal.DigitalOutput
	Logger zerolog.Logger

	setState func(bool)
	getState func() bool
	mark     func()
	pending  func() bool
	consume  func() bool

	mu sync.Mutex
}

// NewLed binds output to the LED fields of store.
func NewLed(output hal.DigitalOutput, store *state.Store, logger zerolog.Logger) *Actuator {
	return &Actuator{
		Name:     "led",
		Output:   output,
		Logger:   logger,
		setState: store.SetLedState,
		getState: store.LedState,
		mark:     store.MarkLedChanged,
		pending:  store.LedChangePending,
		consume:  store.ConsumeLedChanged,
	}
}

// NewFan binds output to the fan fields of store.
func NewFan(output hal.DigitalOutput, store *state.Store, logger zerolog.Logger) *Actuator {
	return &Actuator{
		Name:     "fan",
		Output:   output,
		Logger:   logger,
		setState: store.SetFanState,
		getState: store.FanState,
		mark:     store.MarkFanChanged,
		pending:  store.FanChangePending,
		consume:  store.ConsumeFanChanged,
	}
}

// Set drives the output, records the shadow state and marks a report as
// pending. The shadow state is only updated when the pin write succeeded.
func (a *Actuator) Set(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.write(on)
}

// Apply writes only when the shadow state differs from on. It reports
// whether a write happened.
func (a *Actuator) Apply(on bool) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.getState() == on {
		return false, nil
	}
	return true, a.write(on)
}

func (a *Actuator) write(on bool) error {
	if err := a.Output.Set(on); err != nil {
		return fmt.Errorf("set %s output: %w", a.Name, err)
	}
	a.setState(on)
	a.mark()
	a.Logger.Debug().Str("actuator", a.Name).Bool("on", on).Msg("Output written")
	return nil
}

// State returns the last written logical state.
func (a *Actuator) State() bool {
	return a.getState()
}

// Level reads the hardware output level.
func (a *Actuator) Level() (bool, error) {
	return a.Output.Get()
}

// MarkChanged flags a report without writing the output.
func (a *Actuator) MarkChanged() {
	a.mark()
}

// ChangePending reports whether a report is waiting.
func (a *Actuator) ChangePending() bool {
	return a.pending()
}

// ConsumeChange clears the change flag and reports whether it was set.
func (a *Actuator) ConsumeChange() bool {
	return a.consume()
}
