//go:build !tinygo

// package hostserial opens the box's control link over a real serial
// port, the way driver/mjolnir.Open tries a platform-specific list of
// device paths with tarm/serial.
package hostserial

import (
	"errors"
	"io"
	"runtime"

	"github.com/tarm/serial"
)

const baudRate = 19200

// Open opens dev, or if dev is empty, tries a platform-specific list of
// likely device paths in order and returns the first that succeeds.
func Open(dev string) (io.ReadWriteCloser, error) {
	var devices []string
	if dev != "" {
		devices = append(devices, dev)
	} else {
		switch runtime.GOOS {
		case "windows":
			devices = append(devices, "COM3", "COM4")
		case "darwin":
			devices = append(devices, "/dev/tty.usbserial", "/dev/tty.usbmodem0")
		case "linux":
			devices = append(devices, "/dev/ttyUSB0", "/dev/ttyACM0")
		}
	}
	if len(devices) == 0 {
		return nil, errors.New("hostserial: no device specified")
	}
	var firstErr error
	for _, dev := range devices {
		c := &serial.Config{Name: dev, Baud: baudRate}
		s, err := serial.OpenPort(c)
		if err == nil {
			return s, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
