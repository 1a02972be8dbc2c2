package shield

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Transport is an established byte stream to the modem.
//
// A Transport is assumed to be already connected at the modem's baud rate.
// The engine is the sole reader for the duration of each command exchange;
// there is no concurrent access to serialize. Typical implementations are
// serial ports and in-memory fakes used for testing.
type Transport interface {
	io.Writer
	// Flush blocks until buffered output has been handed to the device.
	Flush() error
	// ByteAvailable reports whether a byte can be read without blocking.
	ByteAvailable() bool
	// ReadByte returns the next byte from the device. It may block; the
	// engine only calls it after ByteAvailable reports true.
	ReadByte() (byte, error)
	Close() error
}

// Dialer opens a Transport to the modem.
//
// Dialer abstracts how the connection is created (serial port, emulator,
// test double) and is used during construction only.
type Dialer interface {
	// Dial creates and returns a connected Transport. It should respect
	// cancellation and deadlines provided by the context.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens the modem UART with go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0".
	PortName string
	// BaudRate defaults to DefaultBaudRate when zero. Ignored if Mode is
	// set.
	BaudRate int
	// Mode overrides the full port configuration. Defaults to 8N1 at
	// BaudRate.
	Mode *serial.Mode
}

// Dial implements Dialer.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("shield: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("shield: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud == 0 {
			baud = DefaultBaudRate
		}
		mode = &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}
	// A short read timeout lets ByteAvailable poll the receive buffer
	// without hanging the engine's busy-wait loop.
	if err := port.SetReadTimeout(time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("configure serial port %s: %w", d.PortName, err)
	}
	return &serialTransport{port: port}, nil
}

// serialTransport adapts a serial.Port to the engine's single-byte polling
// contract. One byte of lookahead backs ByteAvailable.
type serialTransport struct {
	port serial.Port
	buf  [1]byte
	have bool
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *serialTransport) Flush() error {
	return t.port.Drain()
}

func (t *serialTransport) ByteAvailable() bool {
	if t.have {
		return true
	}
	n, err := t.port.Read(t.buf[:])
	if err == nil && n == 1 {
		t.have = true
	}
	return t.have
}

func (t *serialTransport) ReadByte() (byte, error) {
	for !t.have {
		n, err := t.port.Read(t.buf[:])
		if err != nil {
			return 0, err
		}
		if n == 1 {
			t.have = true
		}
	}
	t.have = false
	return t.buf[0], nil
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}
