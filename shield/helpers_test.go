package shield_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/shield"
)

const (
	testPowerPin  shield.Pin = 5
	testDetectPin shield.Pin = 6
)

// staticDialer hands out a pre-built transport.
type staticDialer struct {
	transport shield.Transport
}

func (d staticDialer) Dial(ctx context.Context) (shield.Transport, error) {
	return d.transport, nil
}

// fakeClock advances instantly on Sleep so the engine's settle delays and
// poll budgets run in zero wall time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeGPIO records pin operations and serves scripted input levels.
type fakeGPIO struct {
	mu     sync.Mutex
	levels map[shield.Pin]shield.Level
	ops    []string
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{levels: make(map[shield.Pin]shield.Level)}
}

func (g *fakeGPIO) SetPinMode(pin shield.Pin, mode shield.PinMode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	name := "input"
	switch mode {
	case shield.Output:
		name = "output"
	case shield.InputPulldown:
		name = "input-pulldown"
	}
	g.ops = append(g.ops, fmt.Sprintf("mode %d %s", pin, name))
}

func (g *fakeGPIO) WritePin(pin shield.Pin, level shield.Level) {
	g.mu.Lock()
	defer g.mu.Unlock()
	name := "low"
	if level == shield.High {
		name = "high"
	}
	g.ops = append(g.ops, fmt.Sprintf("write %d %s", pin, name))
}

func (g *fakeGPIO) ReadPin(pin shield.Pin) shield.Level {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels[pin]
}

func (g *fakeGPIO) setLevel(pin shield.Pin, level shield.Level) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.levels[pin] = level
}

func (g *fakeGPIO) operations() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.ops))
	copy(out, g.ops)
	return out
}

// newTestShield builds a shield on the given fakes with a short session
// timeout so exhausted poll budgets stay cheap under the fake clock.
func newTestShield(t *testing.T, transport shield.Transport, gpio *fakeGPIO, clock *fakeClock, opts ...func(*shield.ConfigBuilder)) *shield.Shield {
	t.Helper()
	opts = append([]func(*shield.ConfigBuilder){
		func(b *shield.ConfigBuilder) { b.WithPowerDetectPin(testDetectPin) },
	}, opts...)
	return buildTestShield(t, transport, gpio, clock, opts)
}

// newTestShieldNoDetect builds a shield without a power indicator wired.
func newTestShieldNoDetect(t *testing.T, transport shield.Transport, clock *fakeClock) *shield.Shield {
	t.Helper()
	return buildTestShield(t, transport, newFakeGPIO(), clock, nil)
}

func buildTestShield(t *testing.T, transport shield.Transport, gpio *fakeGPIO, clock *fakeClock, opts []func(*shield.ConfigBuilder)) *shield.Shield {
	t.Helper()

	builder := shield.NewConfigBuilder().
		WithDialer(staticDialer{transport: transport}).
		WithGPIO(gpio).
		WithClock(clock).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithDebugLevel(shield.DebugWarn).
		WithTimeout(time.Second).
		WithPowerPin(testPowerPin)
	for _, opt := range opts {
		opt(builder)
	}

	config, err := builder.Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}

	s, err := shield.New(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error from New(): %v", err)
	}
	return s
}
