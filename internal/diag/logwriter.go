package diag

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// LogWriter is an io.Writer that sends each written line as a DebugLogMsg
// to a Bubble Tea program. Use it as the output for a log.Logger so engine
// diagnostics show up inside the debug sub-panel instead of scrolling the
// terminal out from under the live view.
type LogWriter struct {
	program *tea.Program
}

// NewLogWriter creates a LogWriter that sends debug lines to the given program.
func NewLogWriter(p *tea.Program) *LogWriter {
	return &LogWriter{program: p}
}

// Write implements io.Writer. Each call parses the log line into structured
// fields and sends a DebugLogMsg. The send happens in a goroutine to avoid
// deadlocking when called from inside a Bubble Tea command function.
func (w *LogWriter) Write(b []byte) (int, error) {
	line := strings.TrimRight(string(b), "\n")
	entry := parseLine(line)
	go w.program.Send(DebugLogMsg{Entry: entry})
	return len(b), nil
}

// parseLine extracts time, category, and message from a log line produced
// by the engine's *log.Logger (format: "HH:MM:SS message text").
func parseLine(line string) DebugEntry {
	entry := DebugEntry{Category: "debug", Message: line}

	msg := line
	if len(msg) >= 8 && msg[2] == ':' && msg[5] == ':' {
		if spaceIdx := strings.IndexByte(msg, ' '); spaceIdx > 0 {
			entry.Time = msg[:spaceIdx]
			msg = msg[spaceIdx+1:]
		}
	}

	entry.Category, entry.Message = inferCategory(msg)
	return entry
}

// inferCategory determines the log category from the message content,
// matching the vocabulary internal/engine's logger actually emits.
func inferCategory(msg string) (category, message string) {
	lower := strings.ToLower(msg)

	switch {
	case strings.HasPrefix(lower, "device"), strings.HasPrefix(lower, "sink"), strings.HasPrefix(lower, "source"):
		return "device", msg
	case strings.HasPrefix(lower, "output"):
		return "output", msg
	case strings.HasPrefix(lower, "suspend"):
		return "suspend", msg
	case strings.HasPrefix(lower, "submap"):
		return "submap", msg
	case strings.HasPrefix(lower, "combo"), strings.HasPrefix(lower, "multipurpose"), strings.HasPrefix(lower, "bind"):
		return "combo", msg
	case strings.HasPrefix(lower, "custom"):
		return "custom", msg
	case strings.HasPrefix(lower, "eject"):
		return "eject", msg
	default:
		return "debug", msg
	}
}
