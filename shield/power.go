package shield

import (
	"errors"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/at"
)

// PowerToggle pulses the power key. The line emulates a push button: driven
// low for the pulse period, then released to high impedance so the module's
// internal pull-up restores the idle level. This toggles power state rather
// than commanding a level.
func (s *Shield) PowerToggle() {
	s.logInfo("toggling shield power")
	s.gpio.SetPinMode(s.powerPin, Output)
	s.gpio.WritePin(s.powerPin, Low)
	s.clock.Sleep(powerPulsePeriod)
	s.gpio.SetPinMode(s.powerPin, Input)
}

// WaitPowerOn blocks until the power indicator asserts, bounded by the
// power-on timeout. Some device states never assert the indicator yet are
// still reachable, so expiry falls back to Configure rather than failing
// outright. Boards without an indicator wait out the full boot window.
func (s *Shield) WaitPowerOn() error {
	if !s.hasPowerDetect {
		s.clock.Sleep(powerOnTimeout)
		return nil
	}
	start := s.clock.Now()
	for s.gpio.ReadPin(s.powerDetectPin) != High {
		if s.clock.Now().Sub(start) > powerOnTimeout {
			s.logWarn("shield did not indicate power on")
			if s.recovering {
				// Already inside the recovery path; let the next probe
				// decide instead of recursing.
				return nil
			}
			s.logWarn("reconfiguring shield")
			s.recovering = true
			defer func() { s.recovering = false }()
			return s.Configure()
		}
		s.clock.Sleep(s.pollInterval)
	}
	return nil
}

// Reset issues the full-functionality reset. The datasheet allows the module
// to go silent for minutes afterward, so a reader timeout on the reset
// command itself is tolerated; the power-indicator wait and the echo-off
// probe that follow decide whether the module actually came back.
func (s *Shield) Reset() error {
	s.logInfo("resetting shield")
	err := s.SendCommand(at.CmdFullReset, WithTimeout(resetTimeout))
	if err != nil && !errors.Is(err, ErrTimeout) {
		return err
	}
	if err := s.WaitPowerOn(); err != nil {
		return err
	}
	// Echo off again so the rebooted module doesn't jam the next exchange.
	return s.SendCommand(at.CmdEchoOff)
}

// HardwareReset pulses the reset line, on boards that wire one, and waits
// for the module to come back up.
func (s *Shield) HardwareReset() error {
	if !s.hasResetPin {
		return ErrNoResetPin
	}
	s.logInfo("pulsing hardware reset")
	s.gpio.SetPinMode(s.resetPin, Output)
	s.gpio.WritePin(s.resetPin, Low)
	s.clock.Sleep(resetPulsePeriod)
	s.gpio.SetPinMode(s.resetPin, Input)
	return s.WaitPowerOn()
}
