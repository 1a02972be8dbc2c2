package shield

import "strings"

// DebugLevel controls how much of the engine's diagnostics reach the
// injected logger. Levels are ordered; a message is emitted only if its
// level is at or below the configured one.
type DebugLevel int

const (
	// DebugNone suppresses all engine output.
	DebugNone DebugLevel = iota
	// DebugError emits only errors that fail an operation.
	DebugError
	// DebugWarn adds warnings (truncated buffers, missing indicators).
	DebugWarn
	// DebugInfo adds internal progress and byte-level traces. Very verbose.
	DebugInfo
)

// String returns the level's lowercase name.
func (l DebugLevel) String() string {
	switch l {
	case DebugNone:
		return "none"
	case DebugError:
		return "error"
	case DebugWarn:
		return "warn"
	case DebugInfo:
		return "info"
	default:
		return "unknown"
	}
}

// ParseDebugLevel resolves a level name; unknown names map to DebugError.
func ParseDebugLevel(s string) DebugLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return DebugNone
	case "warn":
		return DebugWarn
	case "info", "debug":
		return DebugInfo
	default:
		return DebugError
	}
}

func (s *Shield) logError(msg string, args ...any) {
	if s.debug >= DebugError {
		s.logger.Error(msg, args...)
	}
}

func (s *Shield) logWarn(msg string, args ...any) {
	if s.debug >= DebugWarn {
		s.logger.Warn(msg, args...)
	}
}

func (s *Shield) logInfo(msg string, args ...any) {
	if s.debug >= DebugInfo {
		s.logger.Info(msg, args...)
	}
}

// traceByte emits the byte-level receive trace at the most verbose level.
func (s *Shield) traceByte(c byte) {
	if s.debug >= DebugInfo {
		s.logger.Debug("rx", "byte", string(rune(c)))
	}
}
