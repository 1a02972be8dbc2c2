package shield

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/at"
)

const (
	// DefaultBaudRate is the shield's fixed UART rate.
	DefaultBaudRate = 115200
	// DefaultPowerPin is the shield's stock power key wiring.
	DefaultPowerPin Pin = 5
	// DefaultTimeout is the session-wide reply deadline when none is
	// configured.
	DefaultTimeout = 10 * time.Second
	// DefaultTries is the per-command retry budget for echo timeouts.
	DefaultTries = 5

	// Hardware timing from the shield datasheet.
	powerPulsePeriod = 3200 * time.Millisecond
	resetPulsePeriod = 10 * time.Second
	powerOnTimeout   = 12 * time.Second
	resetTimeout     = 10 * time.Second
	registerTimeout  = 30 * time.Second

	// The datasheet recommends a short pause between write and read.
	settleDelay = 20 * time.Millisecond
	// Pause before re-sending a command whose echo never arrived.
	retryDelay = 100 * time.Millisecond
	// Pause between consecutive configuration commands.
	configDelay = 100 * time.Millisecond
	// Pause after power-on before the first liveness probe.
	probeDelay = 500 * time.Millisecond

	registerPollInterval = time.Second
)

// commandOptions mirrors the per-call knobs of one command exchange.
type commandOptions struct {
	raw     bool
	dest    []byte
	timeout time.Duration
	tries   int
}

// CommandOption customizes a single SendCommand exchange.
type CommandOption func(*commandOptions)

// WithoutPrefix sends the command text verbatim, without the AT prefix.
func WithoutPrefix() CommandOption {
	return func(o *commandOptions) { o.raw = true }
}

// WithResponse captures the command's DATA payload into dest. The payload is
// truncated to len(dest)-1 bytes and NUL-terminated; use CString to recover
// the text.
func WithResponse(dest []byte) CommandOption {
	return func(o *commandOptions) { o.dest = dest }
}

// WithTimeout overrides the session-wide reply deadline for this exchange.
func WithTimeout(timeout time.Duration) CommandOption {
	return func(o *commandOptions) { o.timeout = timeout }
}

// WithTries overrides the echo-timeout retry budget for this exchange.
func WithTries(tries int) CommandOption {
	return func(o *commandOptions) { o.tries = tries }
}

// SendCommand performs one AT command exchange: write the command line, skip
// its echo, optionally capture a DATA payload, and confirm the final OK.
//
// Only a reader timeout during the echo phase retries the exchange; every
// other failure classification means the device did answer, just not
// usefully, and is returned immediately.
func (s *Shield) SendCommand(command string, opts ...CommandOption) error {
	o := commandOptions{timeout: s.timeout, tries: DefaultTries}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = s.timeout
	}
	if o.tries <= 0 {
		o.tries = DefaultTries
	}
	return s.sendCommand(command, o)
}

func (s *Shield) sendCommand(command string, o commandOptions) error {
	var wire []byte
	if !o.raw {
		wire = append(wire, at.Prefix...)
	}
	wire = append(wire, command...)
	wire = append(wire, at.CR...)

	for try := 0; try < o.tries; try++ {
		if try > 0 {
			s.clock.Sleep(retryDelay)
		}
		s.logInfo("sending command", "command", command, "try", try+1)

		if _, err := s.transport.Write(wire); err != nil {
			return fmt.Errorf("write command %q: %w", command, err)
		}
		if err := s.transport.Flush(); err != nil {
			return fmt.Errorf("flush command %q: %w", command, err)
		}
		s.clock.Sleep(settleDelay)

		start := s.clock.Now()

		// Skip the echoed command line. No echo at all means the device
		// missed the transmission; that is the one retryable failure.
		if !s.skipEcho(start, o.timeout) {
			s.logWarn("no echo from device", "command", command, "try", try+1)
			continue
		}

		if len(o.dest) > 0 {
			if err := s.readPayload(command, o.dest, start, o.timeout); err != nil {
				return err
			}
		}

		resp := s.checkResponse(start, o.timeout)
		if resp != at.TypeOK {
			s.logError("unexpected response type from OK check",
				"command", command, "response", resp.String())
			return responseToError(resp)
		}
		return nil
	}
	return ErrTimeout
}

// skipEcho consumes bytes through the echoed line's terminator. It reports
// false on a reader timeout.
func (s *Shield) skipEcho(start time.Time, timeout time.Duration) bool {
	for {
		c := s.readByte(start, timeout)
		if c == at.TimeoutByte {
			return false
		}
		if c == '\n' {
			return true
		}
	}
}

// readPayload consumes a DATA reply: classify, verify the echoed command
// name, skip the ": " separator, then copy the payload into dest with
// truncation at capacity-1 and a trailing NUL.
func (s *Shield) readPayload(command string, dest []byte, start time.Time, timeout time.Duration) error {
	resp := s.checkResponse(start, timeout)
	if resp != at.TypeData {
		s.logError("unexpected response type from data query",
			"command", command, "response", resp.String())
		return responseToError(resp)
	}

	// The classifier already consumed the leading '+', so the comparison
	// starts at index 1 and stops at the argument separator.
	name := command
	if len(name) > at.NameMax {
		name = name[:at.NameMax]
	}
	for i := 1; i < len(name); i++ {
		if name[i] == '=' || name[i] == '?' {
			break
		}
		c := s.readByte(start, timeout)
		if c == at.TimeoutByte {
			return ErrTimeout
		}
		if c != name[i] {
			s.logError("command/response mismatch",
				"command", command, "got", string(rune(c)),
				"tail", s.drainLine(start, timeout))
			return ErrInvalidResponse
		}
	}

	// Skip the ": " separator after the reply name.
	if s.readByte(start, timeout) == at.TimeoutByte ||
		s.readByte(start, timeout) == at.TimeoutByte {
		return ErrTimeout
	}

	i := 0
	for {
		c := s.readByte(start, timeout)
		if c == at.TimeoutByte {
			return ErrTimeout
		}
		if c == '\n' || c == '\r' {
			break
		}
		if i >= len(dest)-1 {
			// Truncation is not an error, but the rest of the line has to
			// go so the final OK check sees a clean stream.
			s.logWarn("response clipped to fit buffer",
				"command", command, "capacity", len(dest))
			s.drainLine(start, timeout)
			break
		}
		dest[i] = c
		i++
	}
	dest[i] = 0
	return nil
}

// checkResponse classifies the next significant reply token. Whitespace and
// line separators between tokens are discarded. Every branch terminates
// within the deadline.
func (s *Shield) checkResponse(start time.Time, timeout time.Duration) at.ResponseType {
	for {
		c := s.readByte(start, timeout)
		if c == '\r' || c == '\n' || c == ' ' {
			continue
		}
		switch t := at.DecodeByte(c); t {
		case at.TypeTimeout, at.TypeData:
			return t
		case at.TypeOK:
			// Consume the rest of the token through the terminator.
			for {
				k := s.readByte(start, timeout)
				if k == at.TimeoutByte {
					return at.TypeTimeout
				}
				if k == '\n' {
					return at.TypeOK
				}
			}
		case at.TypeError:
			s.logError("shield returned ERROR",
				"tail", s.drainLine(start, timeout))
			return at.TypeError
		default:
			s.logError("shield returned an unexpected character",
				"byte", string(rune(c)),
				"tail", s.drainLine(start, timeout))
			return at.TypeUnknown
		}
	}
}

// drainLine collects the remainder of the current reply line for
// diagnostics, bounded by the deadline.
func (s *Shield) drainLine(start time.Time, timeout time.Duration) string {
	var b strings.Builder
	for {
		c := s.readByte(start, timeout)
		if c == at.TimeoutByte || c == '\n' {
			return b.String()
		}
		if c != '\r' {
			b.WriteByte(c)
		}
	}
}

// readByte returns the next byte from the transport, polling at the
// configured granularity until the deadline anchored at start expires, at
// which point it returns the timeout sentinel. This is the engine's only
// suspension point.
func (s *Shield) readByte(start time.Time, timeout time.Duration) byte {
	for {
		if s.transport.ByteAvailable() {
			c, err := s.transport.ReadByte()
			if err != nil {
				s.logWarn("transport read failed", "error", err)
				return at.TimeoutByte
			}
			s.traceByte(c)
			return c
		}
		if s.clock.Now().Sub(start) > timeout {
			return at.TimeoutByte
		}
		s.clock.Sleep(s.pollInterval)
	}
}

// responseToError maps a classified response to the engine's error taxonomy
// for contexts where that response was not the expected one. Total and pure.
func responseToError(resp at.ResponseType) error {
	switch resp {
	case at.TypeOK:
		return ErrUnexpectedOK
	case at.TypeData:
		return ErrUnexpectedData
	case at.TypeError:
		return ErrLTEError
	case at.TypeTimeout:
		return ErrTimeout
	default:
		return ErrUnexpectedData
	}
}

// CString returns the NUL-terminated prefix of a response buffer as a
// string.
func CString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}
