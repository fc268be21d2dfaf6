// package dacdrv drives the box's dual-channel 10-bit amplitude DAC over
// SPI, following lcd.Open's periph.io SPI-registry setup.
package dacdrv

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// DAC is a two-channel 10-bit SPI DAC (e.g. an MCP4922-class part: one
// 16-bit write per channel, channel select in the top bits).
type DAC struct {
	port spi.PortCloser
	conn spi.Conn
}

const maxHz = 20 * physic.MegaHertz

// Open connects to the first available SPI bus.
func Open() (*DAC, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("dacdrv: %w", err)
	}
	p, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("dacdrv: %w", err)
	}
	c, err := p.Connect(maxHz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("dacdrv: %w", err)
	}
	return &DAC{port: p, conn: c}, nil
}

func (d *DAC) Close() error {
	return d.port.Close()
}

// SetLevel implements driver.DAC. channel is 0 or 1; code is the 10-bit
// DAC value (0-1023, inverted: higher code is lower output, per spec
// §4.6).
func (d *DAC) SetLevel(channel int, code uint16) error {
	if code > 0x3FF {
		code = 0x3FF
	}
	var chanBit uint16
	if channel == 1 {
		chanBit = 1 << 15
	}
	// Channel bit, then buffered, gain x1, active (SHDN=1), per the usual
	// MCP49x2 control-bit layout: c 1 1 1 + 10 data bits + 2 padding bits.
	word := chanBit | 0b0111_0000_0000_0000 | (code << 2)
	tx := []byte{byte(word >> 8), byte(word)}
	if err := d.conn.Tx(tx, make([]byte, len(tx))); err != nil {
		return fmt.Errorf("dacdrv: %w", err)
	}
	return nil
}
