package shield

// Pin identifies a GPIO line by number.
type Pin uint8

// PinMode configures the direction and bias of a GPIO line.
type PinMode int

const (
	Input PinMode = iota
	Output
	// InputPulldown is an input biased low, used for the power indicator so
	// an unpowered shield reads as off.
	InputPulldown
)

// Level is the logic level of a GPIO line.
type Level int

const (
	Low Level = iota
	High
)

// GPIO drives the pins wired to the shield's power key and power indicator.
//
// Implementations are expected to be best-effort register operations; there
// is no error path because the engine has no way to react beyond what the
// transport probes already detect.
type GPIO interface {
	SetPinMode(pin Pin, mode PinMode)
	WritePin(pin Pin, level Level)
	ReadPin(pin Pin) Level
}
