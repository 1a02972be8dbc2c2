package shield_test

import (
	"context"
	"errors"
	"testing"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/at"
	"github.com/OPEnSLab-OSU/CellularShieldDriver/shield"
)

func TestBegin(t *testing.T) {
	t.Run("full bring-up on a live shield", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		transport.Respond("AT+UMNOPROF?", "+UMNOPROF: 19\r\nOK\r\n")
		transport.Respond("AT+CREG?", "+CREG: 0,1\r\nOK\r\n")
		gpio := newFakeGPIO()
		gpio.setLevel(testDetectPin, shield.High)
		s := newTestShield(t, transport, gpio, newFakeClock())

		if !s.Begin() {
			t.Fatalf("bring-up failed: %v", s.LastError())
		}
		if got := s.State(); got != shield.StateNetworkVerified {
			t.Errorf("state = %v, want network verified", got)
		}
		if got := s.Registration(); got != at.RegHomeNetwork {
			t.Errorf("registration = %v, want home network", got)
		}
		if err := s.LastError(); err != nil {
			t.Errorf("unexpected last error: %v", err)
		}
	})

	t.Run("powers the shield on when it is down", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		transport.Respond("AT+UMNOPROF?", "+UMNOPROF: 19\r\nOK\r\n")
		transport.Respond("AT+CREG?", "+CREG: 0,5\r\nOK\r\n")
		gpio := newFakeGPIO() // indicator reads off
		s := newTestShield(t, transport, gpio, newFakeClock())

		if !s.Begin() {
			t.Fatalf("bring-up failed: %v", s.LastError())
		}
		if countWrites(gpio.operations(), "write 5 low") == 0 {
			t.Errorf("power key never pulsed, operations = %q", gpio.operations())
		}
		if got := s.State(); got != shield.StateNetworkVerified {
			t.Errorf("state = %v, want network verified", got)
		}
	})

	t.Run("probe rejection fails the bring-up", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		transport.Respond("ATE0", "ERROR\r\n")
		gpio := newFakeGPIO()
		gpio.setLevel(testDetectPin, shield.High)
		s := newTestShield(t, transport, gpio, newFakeClock())

		if s.Begin() {
			t.Fatal("bring-up should have failed")
		}
		if got := s.State(); got != shield.StateFailed {
			t.Errorf("state = %v, want failed", got)
		}
		if err := s.LastError(); !errors.Is(err, shield.ErrLTEError) {
			t.Errorf("last error = %v, want ErrLTEError", err)
		}
	})

	t.Run("dead shield fails with not found", func(t *testing.T) {
		transport := shield.NewScriptTransport()
		transport.Silence("ATE0")
		s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

		if s.Begin() {
			t.Fatal("bring-up should have failed")
		}
		if err := s.LastError(); !errors.Is(err, shield.ErrLTENotFound) {
			t.Errorf("last error = %v, want ErrLTENotFound", err)
		}
	})
}

func TestClose(t *testing.T) {
	transport := shield.NewScriptTransport()
	s := newTestShield(t, transport, newFakeGPIO(), newFakeClock())

	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Close(); !errors.Is(err, shield.ErrAlreadyClosed) {
		t.Errorf("second close = %v, want ErrAlreadyClosed", err)
	}
}

type nilTransportDialer struct{}

func (nilTransportDialer) Dial(ctx context.Context) (shield.Transport, error) {
	return nil, nil
}

func TestNewRejectsNilTransport(t *testing.T) {
	config, err := shield.NewConfigBuilder().
		WithDialer(nilTransportDialer{}).
		WithGPIO(newFakeGPIO()).
		Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}

	_, err = shield.New(context.Background(), config)
	if !errors.Is(err, shield.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got: %v", err)
	}
}
