package shield

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/at"
)

// State is the bring-up state machine's position. It always re-derives from
// hardware observation on Begin; nothing is trusted across a physical reset.
type State int

const (
	// StateUnknown is the initial state before any hardware observation.
	StateUnknown State = iota
	// StateAlive means the shield answers AT commands.
	StateAlive
	// StateConfigured means the static device configuration is written.
	StateConfigured
	// StateNetworkVerified means the device reports a registered network.
	StateNetworkVerified
	// StateFailed is the terminal failure state; LastError holds the cause.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAlive:
		return "alive"
	case StateConfigured:
		return "configured"
	case StateNetworkVerified:
		return "network verified"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Shield drives an LTE shield over a byte transport with AT commands and
// sequences its power and reset lines over GPIO.
//
// All operations are blocking and must be invoked from a single logical
// thread of control; the engine owns the transport's receive buffer for the
// duration of each exchange and holds no locks around I/O. Unsolicited
// result codes arriving between exchanges are not drained and can corrupt
// the next parse.
type Shield struct {
	transport Transport
	gpio      GPIO
	clock     Clock
	logger    *slog.Logger
	debug     DebugLevel

	powerPin       Pin
	powerDetectPin Pin
	hasPowerDetect bool
	resetPin       Pin
	hasResetPin    bool

	network      NetworkConfig
	timeout      time.Duration
	pollInterval time.Duration

	// recovering latches while WaitPowerOn's configure fallback runs, so
	// the nested wait inside Reset cannot recurse into it again.
	recovering bool
	closed     bool

	// mu guards only the observable snapshot below, for status readers
	// like the HTTP endpoint. Command exchanges stay single-threaded.
	mu           sync.Mutex
	state        State
	lastErr      error
	registration at.RegistrationStatus
}

// New dials the transport and prepares the engine. It does not touch the
// modem hardware; call Begin to run the bring-up.
func New(ctx context.Context, config Config) (*Shield, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	return &Shield{
		transport:      transport,
		gpio:           config.GPIO,
		clock:          config.Clock,
		logger:         config.Logger.With("component", "shield"),
		debug:          config.Debug,
		powerPin:       config.PowerPin,
		powerDetectPin: config.PowerDetectPin,
		hasPowerDetect: config.HasPowerDetect,
		resetPin:       config.ResetPin,
		hasResetPin:    config.HasResetPin,
		network:        config.Network,
		timeout:        config.Timeout,
		pollInterval:   config.PollInterval,
	}, nil
}

// Begin runs the full bring-up and reports overall success. Failures are
// collapsed to false with logged diagnostics; callers needing the specific
// Error use LastError or the lower-level operations directly.
func (s *Shield) Begin() bool {
	if err := s.bringUp(); err != nil {
		s.setFailed(err)
		s.logError("bring-up failed", "error", err)
		return false
	}
	return true
}

func (s *Shield) bringUp() error {
	s.setState(StateUnknown)

	// Pin setup before anything else. The power key idles high-impedance;
	// the indicator is biased low so an unpowered shield reads off.
	s.gpio.SetPinMode(s.powerPin, Input)
	if s.hasPowerDetect {
		s.gpio.SetPinMode(s.powerDetectPin, InputPulldown)
	}
	s.logInfo("begin LTE shield bring-up")

	if err := s.ensureAlive(); err != nil {
		return err
	}
	s.setState(StateAlive)

	if err := s.Configure(); err != nil {
		return err
	}
	s.setState(StateConfigured)

	if err := s.ensureNetwork(); err != nil {
		return err
	}
	s.setState(StateNetworkVerified)
	s.logInfo("network verified", "registration", s.Registration().String())
	return nil
}

// ensureAlive reaches a shield that answers AT commands, power cycling if
// the first probe times out.
func (s *Shield) ensureAlive() error {
	// If the indicator already reads high (or there is none to read), the
	// shield may be up; probe before touching power.
	if !s.hasPowerDetect || s.gpio.ReadPin(s.powerDetectPin) == High {
		err := s.SendCommand(at.CmdEchoOff, WithTries(2))
		if err == nil {
			s.logInfo("shield is online")
			s.probeOperators()
			return nil
		}
		if !errors.Is(err, ErrTimeout) {
			return err
		}
	}

	s.logInfo("attempting to power on shield")
	s.PowerToggle()
	if err := s.WaitPowerOn(); err != nil {
		return err
	}
	s.clock.Sleep(probeDelay)

	err := s.SendCommand(at.CmdEchoOff)
	if err == nil {
		s.logInfo("shield successfully powered on")
		return nil
	}
	if errors.Is(err, ErrTimeout) {
		return ErrLTENotFound
	}
	return err
}

// probeOperators logs the visible operator list. Informational only; it runs
// only at full verbosity and failures are logged, not returned.
func (s *Shield) probeOperators() {
	if s.debug < DebugInfo {
		return
	}
	var buf [128]byte
	err := s.SendCommand(at.CmdOperatorScan,
		WithResponse(buf[:]), WithTimeout(registerTimeout))
	if err != nil {
		s.logInfo("operator scan failed", "error", err)
		return
	}
	s.logInfo("visible operators", "operators", CString(buf[:]))
}

// ensureNetwork verifies registration, reconfiguring the network once if the
// device's operator profile does not match the configured one.
func (s *Shield) ensureNetwork() error {
	err := s.VerifyNetwork()
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrLTEBadConfig) {
		return err
	}
	s.logWarn("network configuration mismatch, reconfiguring")
	if err := s.ConfigureNetwork(); err != nil {
		return err
	}
	return s.VerifyNetwork()
}

// SetNetworkConfig replaces the network configuration and re-runs the
// network portion of the bring-up. Like Begin, it collapses failures to a
// boolean with logged detail.
func (s *Shield) SetNetworkConfig(config NetworkConfig) bool {
	s.network = config
	if err := s.ensureNetwork(); err != nil {
		s.setFailed(err)
		s.logError("network reconfiguration failed", "error", err)
		return false
	}
	s.setState(StateNetworkVerified)
	return true
}

// Close releases the transport. The shield cannot be reused afterward.
func (s *Shield) Close() error {
	if s.closed {
		return ErrAlreadyClosed
	}
	s.closed = true
	return s.transport.Close()
}

// State returns the bring-up state machine's current position.
func (s *Shield) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the Error that moved the engine to StateFailed, or nil.
func (s *Shield) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Registration returns the last registration status accepted as connected.
func (s *Shield) Registration() at.RegistrationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registration
}

func (s *Shield) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	if state != StateFailed {
		s.lastErr = nil
	}
}

func (s *Shield) setFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.lastErr = err
}

func (s *Shield) setRegistration(status at.RegistrationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registration = status
}
