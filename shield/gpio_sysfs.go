package shield

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// SysfsGPIO drives GPIO lines through the Linux sysfs interface. It is the
// concrete implementation used by the bring-up binary on single-board hosts.
//
// Failures are logged and otherwise swallowed: a pin that cannot be driven
// shows up downstream as a transport probe failure, which is the signal the
// engine actually acts on.
type SysfsGPIO struct {
	// Base is the sysfs gpio root, "/sys/class/gpio" when empty.
	Base   string
	Logger *slog.Logger
}

func (g *SysfsGPIO) base() string {
	if g.Base != "" {
		return g.Base
	}
	return "/sys/class/gpio"
}

func (g *SysfsGPIO) logError(msg string, args ...any) {
	if g.Logger != nil {
		g.Logger.Error(msg, args...)
	}
}

func (g *SysfsGPIO) pinDir(pin Pin) string {
	return filepath.Join(g.base(), fmt.Sprintf("gpio%d", pin))
}

func (g *SysfsGPIO) export(pin Pin) {
	if _, err := os.Stat(g.pinDir(pin)); err == nil {
		return
	}
	path := filepath.Join(g.base(), "export")
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d", pin)), 0o644); err != nil {
		g.logError("gpio export failed", "pin", pin, "error", err)
	}
}

// SetPinMode exports the pin if needed and sets its direction. Sysfs has no
// bias control, so InputPulldown degrades to a plain input; the shield's
// indicator line is push-pull and does not rely on the bias.
func (g *SysfsGPIO) SetPinMode(pin Pin, mode PinMode) {
	g.export(pin)
	direction := "in"
	if mode == Output {
		direction = "out"
	}
	path := filepath.Join(g.pinDir(pin), "direction")
	if err := os.WriteFile(path, []byte(direction), 0o644); err != nil {
		g.logError("gpio direction failed", "pin", pin, "error", err)
	}
}

// WritePin sets the output value of the pin.
func (g *SysfsGPIO) WritePin(pin Pin, level Level) {
	value := "0"
	if level == High {
		value = "1"
	}
	path := filepath.Join(g.pinDir(pin), "value")
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		g.logError("gpio write failed", "pin", pin, "error", err)
	}
}

// ReadPin reads the input value of the pin. Read failures report Low, the
// same as an unpowered shield.
func (g *SysfsGPIO) ReadPin(pin Pin) Level {
	path := filepath.Join(g.pinDir(pin), "value")
	data, err := os.ReadFile(path)
	if err != nil {
		g.logError("gpio read failed", "pin", pin, "error", err)
		return Low
	}
	if len(data) > 0 && data[0] == '1' {
		return High
	}
	return Low
}
