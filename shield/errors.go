package shield

import "errors"

// Error is the engine's result taxonomy. Every engine operation returns one
// of these values (or nil for success); nothing is ever panicked.
type Error int

const (
	// ErrTimeout means the device never answered within the deadline.
	ErrTimeout Error = iota + 1
	// ErrInvalidResponse means the reply named a different command than the
	// one sent.
	ErrInvalidResponse
	// ErrUnexpectedData means a data token arrived where OK was expected.
	ErrUnexpectedData
	// ErrUnexpectedOK means OK arrived where a data token was expected.
	ErrUnexpectedOK
	// ErrLTEError means the device reported ERROR.
	ErrLTEError
	// ErrLTENotFound means the shield could not be contacted even after
	// power cycling.
	ErrLTENotFound
	// ErrLTEBadConfig means the active MNO profile does not match the
	// configured one.
	ErrLTEBadConfig
	// ErrAutoMNOFailed means the device never self-selected a concrete MNO
	// profile in auto mode.
	ErrAutoMNOFailed
	// ErrRegistrationFailed means the network registration poll budget was
	// exhausted without reaching a registered state.
	ErrRegistrationFailed
)

func (e Error) Error() string {
	switch e {
	case ErrTimeout:
		return "shield: command timed out"
	case ErrInvalidResponse:
		return "shield: command/response mismatch"
	case ErrUnexpectedData:
		return "shield: unexpected data response"
	case ErrUnexpectedOK:
		return "shield: unexpected OK response"
	case ErrLTEError:
		return "shield: device reported ERROR"
	case ErrLTENotFound:
		return "shield: LTE shield not found"
	case ErrLTEBadConfig:
		return "shield: network configuration mismatch"
	case ErrAutoMNOFailed:
		return "shield: automatic MNO selection failed"
	case ErrRegistrationFailed:
		return "shield: network registration failed"
	default:
		return "shield: unknown error"
	}
}

var (
	// ErrNoDialer is returned when a Shield is constructed without a Dialer.
	ErrNoDialer = errors.New("shield: no dialer configured")

	// ErrNoGPIO is returned when a Shield is constructed without a GPIO
	// collaborator. Power sequencing is impossible without one.
	ErrNoGPIO = errors.New("shield: no gpio configured")

	// ErrNotInitialized is returned when the dialer produced no transport.
	ErrNotInitialized = errors.New("shield: shield not initialized")

	// ErrAlreadyClosed is returned when Close is called twice.
	ErrAlreadyClosed = errors.New("shield: shield already closed")

	// ErrNoResetPin is returned by HardwareReset when no reset line is
	// configured.
	ErrNoResetPin = errors.New("shield: no reset pin configured")
)
