package shield

import (
	"fmt"
	"strconv"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/at"
)

// configCommands is the fixed device configuration written during
// Configure, in order. Each must individually succeed.
var configCommands = []string{
	// GPIO1 drives the network indicator LED.
	at.CmdGPIONetworkLED,
	// GPIO2 enables the GNSS supply.
	at.CmdGPIOGNSSSupply,
	// GPIO3 mirrors the power state.
	at.CmdGPIOPowerInd,
	// SMS message format to text.
	at.CmdTextMode,
	// Automatic timezone from the network.
	at.CmdAutoTimezone,
}

// Configure re-establishes contact with the shield and writes its static
// device configuration, ending with a full reset. Contact is attempted up to
// four times with a power cycle between attempts.
func (s *Shield) Configure() error {
	err := s.SendCommand(at.CmdEchoOff)
	for tries := 1; err != nil && tries < 4; tries++ {
		s.PowerToggle()
		s.clock.Sleep(powerOnTimeout)
		err = s.SendCommand(at.CmdEchoOff)
	}
	if err != nil {
		s.logError("could not find LTE shield", "error", err)
		return ErrLTENotFound
	}

	for _, cmd := range configCommands {
		if err := s.SendCommand(cmd); err != nil {
			return err
		}
		s.clock.Sleep(configDelay)
	}
	return s.Reset()
}

// VerifyNetwork checks that the active MNO profile matches the configured
// one and then polls registration until the device reports a connected
// state. A profile mismatch returns ErrLTEBadConfig so the caller can run
// ConfigureNetwork and retry.
func (s *Shield) VerifyNetwork() error {
	var buf [16]byte
	if err := s.SendCommand(at.CmdMNOQuery, WithResponse(buf[:])); err != nil {
		return err
	}
	reply := CString(buf[:])
	profile, err := strconv.Atoi(reply)
	if err != nil {
		s.logError("unparseable MNO profile reply", "reply", reply)
		return ErrInvalidResponse
	}

	got := at.MNOProfile(profile)
	if s.network.MNO == at.MNOAuto {
		// Auto mode self-selects a concrete profile; only zero means the
		// device was never configured.
		if got == at.MNOError {
			s.logWarn("MNO profile not configured")
			return ErrLTEBadConfig
		}
	} else if got != s.network.MNO {
		s.logWarn("MNO profile mismatch",
			"want", s.network.MNO.String(), "got", got.String())
		return ErrLTEBadConfig
	}

	return s.waitForRegistration()
}

// waitForRegistration polls +CREG? at a fixed interval until the device
// reports a connected status or the registration budget runs out.
func (s *Shield) waitForRegistration() error {
	maxPolls := int(registerTimeout / registerPollInterval)
	var buf [16]byte
	for poll := 0; poll < maxPolls; poll++ {
		if poll > 0 {
			s.clock.Sleep(registerPollInterval)
		}
		if err := s.SendCommand(at.CmdRegistration, WithResponse(buf[:])); err != nil {
			return err
		}
		status, err := at.ParseRegistration(CString(buf[:]))
		if err != nil {
			s.logWarn("malformed registration reply", "reply", CString(buf[:]))
			continue
		}
		s.logInfo("registration status", "status", status.String())
		if status.Registered() {
			s.setRegistration(status)
			return nil
		}
	}
	s.logError("network registration timed out")
	return ErrRegistrationFailed
}

// ConfigureNetwork pushes the configured operator profile and PDP context to
// the device: radio off, profile write, reset, then the default PDP context
// and automatic operator selection.
func (s *Shield) ConfigureNetwork() error {
	s.logInfo("configuring network",
		"mno", s.network.MNO.String(), "apn", s.network.APN)

	// Drop off the network before touching carrier configuration.
	if err := s.SendCommand(at.CmdRadioOff); err != nil {
		return err
	}
	cmd := fmt.Sprintf("%s=%d", at.CmdMNOProfile, int(s.network.MNO))
	if err := s.SendCommand(cmd); err != nil {
		return err
	}
	if err := s.Reset(); err != nil {
		return err
	}

	if s.network.MNO == at.MNOAuto {
		if err := s.waitForAutoMNO(); err != nil {
			return err
		}
	}

	if s.network.APN != "" && s.network.PDP != at.PDPNone {
		cmd := fmt.Sprintf(`%s=1,"%s","%s"`,
			at.CmdPDPContext, s.network.PDP.WireString(), s.network.APN)
		if err := s.SendCommand(cmd); err != nil {
			return err
		}
	}

	// Back to automatic operator selection; registration can take a while.
	return s.SendCommand(at.CmdAutoRegister, WithTimeout(registerTimeout))
}

// waitForAutoMNO polls the device until auto mode settles on a concrete
// (non-zero) profile.
func (s *Shield) waitForAutoMNO() error {
	maxPolls := int(registerTimeout / registerPollInterval)
	var buf [16]byte
	for poll := 0; poll < maxPolls; poll++ {
		if poll > 0 {
			s.clock.Sleep(registerPollInterval)
		}
		if err := s.SendCommand(at.CmdMNOQuery, WithResponse(buf[:])); err != nil {
			return err
		}
		if profile, err := strconv.Atoi(CString(buf[:])); err == nil && profile != 0 {
			s.logInfo("device selected MNO profile",
				"profile", at.MNOProfile(profile).String())
			return nil
		}
	}
	s.logError("device never self-selected an MNO profile")
	return ErrAutoMNOFailed
}
