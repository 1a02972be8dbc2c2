package shield

import "time"

// Clock is the engine's time source. The engine's only suspension points are
// bounded polls and fixed settle delays, both expressed through this
// interface so tests can substitute a deterministic implementation.
type Clock interface {
	// Now returns the current time. Readings are only ever compared with
	// each other, so any monotonic source will do.
	Now() time.Time
	// Sleep blocks the calling goroutine for the given duration.
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns a Clock backed by the Go runtime.
func SystemClock() Clock { return systemClock{} }
