package shield_test

import (
	"errors"
	"testing"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/at"
	"github.com/OPEnSLab-OSU/CellularShieldDriver/shield"
)

func TestSendCommandWireFormat(t *testing.T) {
	t.Run("prefixed", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

		if err := s.SendCommand(at.CmdEchoOff); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		writes := transport.Writes()
		if len(writes) != 1 || writes[0] != "ATE0" {
			t.Errorf("writes = %q, want [\"ATE0\"]", writes)
		}
	})

	t.Run("without prefix", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

		if err := s.SendCommand("+CMGF=1", shield.WithoutPrefix()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		writes := transport.Writes()
		if len(writes) != 1 || writes[0] != "+CMGF=1" {
			t.Errorf("writes = %q, want [\"+CMGF=1\"]", writes)
		}
	})
}

func TestSendCommandCapturesPayload(t *testing.T) {
	transport := shield.NewScriptTransport()
	transport.Respond("AT+CREG?", "+CREG: 0,1\r\nOK\r\n")
	s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

	var buf [16]byte
	if err := s.SendCommand(at.CmdRegistration, shield.WithResponse(buf[:])); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := shield.CString(buf[:]); got != "0,1" {
		t.Errorf("payload = %q, want %q", got, "0,1")
	}
}

func TestSendCommandNameMismatch(t *testing.T) {
	transport := shield.NewScriptTransport()
	transport.Respond("AT+CREG?", "+CSQ: 5,99\r\nOK\r\n")
	s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

	var buf [16]byte
	err := s.SendCommand(at.CmdRegistration, shield.WithResponse(buf[:]))
	if !errors.Is(err, shield.ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got: %v", err)
	}
}

func TestSendCommandRetriesOnMissingEcho(t *testing.T) {
	transport := shield.NewScriptTransport()
	transport.Silence("ATE0")
	s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

	err := s.SendCommand(at.CmdEchoOff, shield.WithTries(3))
	if !errors.Is(err, shield.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got: %v", err)
	}
	if got := len(transport.Writes()); got != 3 {
		t.Errorf("command written %d times, want 3", got)
	}
}

func TestSendCommandTruncatesOversizedPayload(t *testing.T) {
	transport := shield.NewScriptTransport()
	transport.Respond("AT+CREG?", "+CREG: 0,12345\r\nOK\r\n")
	s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

	t.Run("clips at capacity", func(t *testing.T) {
		var buf [4]byte
		if err := s.SendCommand(at.CmdRegistration, shield.WithResponse(buf[:])); err != nil {
			t.Fatalf("truncation should not be an error: %v", err)
		}
		if got := shield.CString(buf[:]); got != "0,1" {
			t.Errorf("payload = %q, want %q", got, "0,1")
		}
	})

	t.Run("single byte buffer holds only the terminator", func(t *testing.T) {
		var buf [1]byte
		if err := s.SendCommand(at.CmdRegistration, shield.WithResponse(buf[:])); err != nil {
			t.Fatalf("truncation should not be an error: %v", err)
		}
		if got := shield.CString(buf[:]); got != "" {
			t.Errorf("payload = %q, want empty", got)
		}
	})
}

func TestSendCommandErrorReply(t *testing.T) {
	transport := shield.NewScriptTransport()
	transport.Respond("AT+CFUN=15", "ERROR\r\n")
	s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

	err := s.SendCommand(at.CmdFullReset)
	if !errors.Is(err, shield.ErrLTEError) {
		t.Errorf("expected ErrLTEError, got: %v", err)
	}
}

func TestSendCommandExpectedDataGotOK(t *testing.T) {
	transport := shield.NewScriptTransport()
	transport.Respond("AT+UMNOPROF?", "OK\r\n")
	s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

	var buf [16]byte
	err := s.SendCommand(at.CmdMNOQuery, shield.WithResponse(buf[:]))
	if !errors.Is(err, shield.ErrUnexpectedOK) {
		t.Errorf("expected ErrUnexpectedOK, got: %v", err)
	}
}
