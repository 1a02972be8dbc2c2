package shield_test

import (
	"errors"
	"testing"
	"time"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/shield"
)

func TestPowerToggle(t *testing.T) {
	transport := shield.NewScriptTransport()
	gpio := newFakeGPIO()
	s := newTestShield(t, transport, gpio, newFakeClock())

	s.PowerToggle()

	want := []string{"mode 5 output", "write 5 low", "mode 5 input"}
	got := gpio.operations()
	if len(got) != len(want) {
		t.Fatalf("operations = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("operation %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWaitPowerOn(t *testing.T) {
	t.Run("returns once the indicator asserts", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		gpio := newFakeGPIO()
		gpio.setLevel(testDetectPin, shield.High)
		s := newTestShield(t, transport, gpio, newFakeClock())

		if err := s.WaitPowerOn(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if got := len(transport.Writes()); got != 0 {
			t.Errorf("no commands expected, got %q", transport.Writes())
		}
	})

	t.Run("without indicator waits out the boot window", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		clock := newFakeClock()
		s := newTestShieldNoDetect(t, transport, clock)

		before := clock.Now()
		if err := s.WaitPowerOn(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if waited := clock.Now().Sub(before); waited < 12*time.Second {
			t.Errorf("waited %v, want the full 12s boot window", waited)
		}
	})

	t.Run("expiry falls back to reconfiguration", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		gpio := newFakeGPIO() // indicator stays low
		s := newTestShield(t, transport, gpio, newFakeClock())

		if err := s.WaitPowerOn(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The fallback ran the full Configure sequence, and its nested
		// power-on wait did not recurse into Configure again.
		writes := transport.Writes()
		if countWrites(writes, "AT+CMGF=1") != 1 {
			t.Errorf("expected one configuration pass, writes = %q", writes)
		}
		if countWrites(writes, "AT+CFUN=15") != 1 {
			t.Errorf("expected one reset, writes = %q", writes)
		}
	})
}

func TestReset(t *testing.T) {
	t.Run("tolerates a silent reset command", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		transport.Silence("AT+CFUN=15")
		gpio := newFakeGPIO()
		gpio.setLevel(testDetectPin, shield.High)
		s := newTestShield(t, transport, gpio, newFakeClock())

		if err := s.Reset(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("propagates a rejected reset command", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		transport.Respond("AT+CFUN=15", "ERROR\r\n")
		gpio := newFakeGPIO()
		gpio.setLevel(testDetectPin, shield.High)
		s := newTestShield(t, transport, gpio, newFakeClock())

		err := s.Reset()
		if !errors.Is(err, shield.ErrLTEError) {
			t.Errorf("expected ErrLTEError, got: %v", err)
		}
	})
}

func TestHardwareReset(t *testing.T) {
	t.Run("requires a wired reset pin", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

		err := s.HardwareReset()
		if !errors.Is(err, shield.ErrNoResetPin) {
			t.Errorf("expected ErrNoResetPin, got: %v", err)
		}
	})

	t.Run("pulses the reset line", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		gpio := newFakeGPIO()
		gpio.setLevel(testDetectPin, shield.High)
		s := newTestShield(t, transport, gpio, newFakeClock(),
			func(b *shield.ConfigBuilder) { b.WithResetPin(7) })

		if err := s.HardwareReset(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ops := gpio.operations()
		if countWrites(ops, "write 7 low") != 1 {
			t.Errorf("reset line not pulsed, operations = %q", ops)
		}
	})
}
