// package gatedrv drives a channel's H-bridge gate pins over periph.io
// GPIO, the way input.Open wires buttons to bcm283x pins.
package gatedrv

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
)

// Pins is one channel's pair of H-bridge gate pins.
type Pins struct {
	plus, minus gpio.PinOut
}

// Open initializes the host's GPIO subsystem and wires up a channel's
// plus/minus gate pins, driven low (both legs off) until SetPins is
// called.
func Open(plus, minus gpio.PinOut) (*Pins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gatedrv: %w", err)
	}
	p := &Pins{plus: plus, minus: minus}
	if err := p.SetPins(false, false); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPins implements driver.GateOutput.
func (p *Pins) SetPins(plus, minus bool) error {
	if err := p.plus.Out(gpio.Level(plus)); err != nil {
		return fmt.Errorf("gatedrv: plus pin: %w", err)
	}
	if err := p.minus.Out(gpio.Level(minus)); err != nil {
		return fmt.Errorf("gatedrv: minus pin: %w", err)
	}
	return nil
}
