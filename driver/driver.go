// package driver declares the hardware collaborator interfaces the
// stimulation engine consumes: gate pins, DAC, persistent store, serial
// transport, audio envelope, display, knob and ADC (spec §6's "external
// interfaces" contract). Concrete implementations live in the
// subpackages (dacdrv, gatedrv, hostserial, boxsim).
package driver

import "io"

// GateOutput drives one channel's pair of H-bridge gate pins.
type GateOutput interface {
	SetPins(plus, minus bool) error
}

// DAC is the shared two-channel 10-bit amplitude DAC: exclusive
// foreground use, one SPI transaction per channel update.
type DAC interface {
	SetLevel(channel int, code uint16) error
}

// Store is the byte-addressable persistent store backing configuration
// (spec §6: "≥ 512 B with blocking read/write").
type Store interface {
	ReadAt(p []byte, off int) (int, error)
	WriteAt(p []byte, off int) (int, error)
}

// Transport is the host-facing half-duplex serial link the protocol
// layer runs over.
type Transport io.ReadWriteCloser

// AudioEnvelope samples the rectified audio input whose level replaces
// the channels' intensity value in the Audio1/2/3 modes.
type AudioEnvelope interface {
	Level() byte
}

// Display is the 16x2 character menu display. Out of scope per the
// core engine's spec; declared here only as an interface. Nothing in box
// uses it.
type Display interface {
	WriteLine(row int, text string) error
}

// Knob reads the live front-panel knob position, scaled to 0-255.
type Knob interface {
	Read() byte
}

// ADC samples the box's remaining analog channels: two level pots, the
// knob, two audio inputs, and battery voltage.
type ADC interface {
	Sample(channel int) (uint16, error)
}
