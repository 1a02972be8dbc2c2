package shield

import (
	"io"
	"strings"
	"sync"
)

// ScriptTransport is an in-memory Transport scripted with canned replies.
// Exported for use in tests: it behaves like a modem that echoes every
// command line and answers instantly from its script.
//
// Written command lines are matched (without the trailing terminator)
// against registered responders in registration order. A matched command is
// echoed back followed by its scripted reply bytes; a silenced command
// produces nothing at all, which the engine observes as an echo timeout.
// Unmatched commands get the echo plus a plain "OK\r\n".
type ScriptTransport struct {
	mu      sync.Mutex
	rules   []scriptRule
	pending []byte
	writes  []string
	closed  bool
}

type scriptRule struct {
	match  func(command string) bool
	handle func(command string) (reply string, echo bool)
}

// NewScriptTransport creates an empty scripted transport.
func NewScriptTransport() *ScriptTransport {
	return &ScriptTransport{}
}

// Respond registers a fixed reply for an exact command line. The reply is
// raw wire bytes after the echo, e.g. "OK\r\n" or "+CREG: 0,1\r\nOK\r\n".
func (t *ScriptTransport) Respond(command, reply string) {
	t.addRule(
		func(c string) bool { return c == command },
		func(string) (string, bool) { return reply, true },
	)
}

// RespondSeq registers successive replies for an exact command line; each
// write consumes the next reply, and the last one repeats.
func (t *ScriptTransport) RespondSeq(command string, replies ...string) {
	i := 0
	t.addRule(
		func(c string) bool { return c == command },
		func(string) (string, bool) {
			reply := replies[i]
			if i < len(replies)-1 {
				i++
			}
			return reply, true
		},
	)
}

// Silence registers an exact command line the modem never echoes nor
// answers, driving the engine's echo-timeout retry path.
func (t *ScriptTransport) Silence(command string) {
	t.addRule(
		func(c string) bool { return c == command },
		func(string) (string, bool) { return "", false },
	)
}

// OnCommand registers a dynamic responder; ok false falls through to later
// rules and ultimately the default OK.
func (t *ScriptTransport) OnCommand(fn func(command string) (reply string, ok bool)) {
	t.addRule(
		func(c string) bool { _, ok := fn(c); return ok },
		func(c string) (string, bool) { reply, _ := fn(c); return reply, true },
	)
}

func (t *ScriptTransport) addRule(match func(string) bool, handle func(string) (string, bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = append(t.rules, scriptRule{match: match, handle: handle})
}

// Writes returns the command lines written so far, terminators stripped.
func (t *ScriptTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.writes))
	copy(out, t.writes)
	return out
}

// Inject queues raw bytes for the engine to read, as if the modem had sent
// them unprompted.
func (t *ScriptTransport) Inject(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, data...)
}

func (t *ScriptTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	command := strings.TrimRight(string(p), "\r\n")
	t.writes = append(t.writes, command)

	for _, rule := range t.rules {
		if !rule.match(command) {
			continue
		}
		reply, echo := rule.handle(command)
		if echo {
			t.pending = append(t.pending, command...)
			t.pending = append(t.pending, "\r\n"...)
			t.pending = append(t.pending, reply...)
		}
		return len(p), nil
	}

	t.pending = append(t.pending, command...)
	t.pending = append(t.pending, "\r\nOK\r\n"...)
	return len(p), nil
}

func (t *ScriptTransport) Flush() error { return nil }

func (t *ScriptTransport) ByteAvailable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) > 0
}

func (t *ScriptTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return 0, io.EOF
	}
	c := t.pending[0]
	t.pending = t.pending[1:]
	return c, nil
}

func (t *ScriptTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
