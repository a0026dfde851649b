// Package logview keeps a bounded in-memory log for display in the
// application's log pane. Messages arrive as lines with a bracketed
// level prefix, e.g. "[WARN] duplicate task dropped".
package logview

import (
	"strings"
	"time"
)

// MaxEntries caps the buffer; the oldest entry is evicted first.
const MaxEntries = 200

// Level classifies a log entry for filtering.
type Level string

const (
	LevelTrace Level = "TRACE"
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel maps a bracketed prefix to a Level.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError:
		return Level(s), true
	}
	return "", false
}

// Entry is one captured log line.
type Entry struct {
	Message   string
	Timestamp time.Time
	Level     Level
}

// FormatTimestamp renders the entry time as HH:MM:SS.
func (e Entry) FormatTimestamp() string {
	return e.Timestamp.Format("15:04:05")
}

// Manager holds the bounded log buffer and the visible-level filter.
// It is not safe for concurrent use; the render loop owns it.
type Manager struct {
	entries []Entry
	max     int
	visible map[Level]bool
	now     func() time.Time
}

// NewManager returns a Manager with the default capacity, showing info
// and above.
func NewManager() *Manager {
	return NewManagerSize(MaxEntries)
}

// NewManagerSize returns a Manager holding at most size entries.
func NewManagerSize(size int) *Manager {
	if size <= 0 {
		size = MaxEntries
	}
	return &Manager{
		max: size,
		visible: map[Level]bool{
			LevelInfo:  true,
			LevelWarn:  true,
			LevelError: true,
		},
		now: time.Now,
	}
}

// Push appends one message, deriving its level from a "[LEVEL] "
// prefix and defaulting to info.
func (m *Manager) Push(message string) {
	level := LevelInfo
	if rest, ok := strings.CutPrefix(message, "["); ok {
		if prefix, _, found := strings.Cut(rest, "]"); found {
			if l, ok := ParseLevel(prefix); ok {
				level = l
			}
		}
	}
	if len(m.entries) >= m.max {
		m.entries = append(m.entries[:0], m.entries[1:]...)
	}
	m.entries = append(m.entries, Entry{
		Message:   message,
		Timestamp: m.now(),
		Level:     level,
	})
}

// Extend appends each message in order.
func (m *Manager) Extend(messages []string) {
	for _, msg := range messages {
		m.Push(msg)
	}
}

// All returns every buffered entry, oldest first.
func (m *Manager) All() []Entry {
	return m.entries
}

// Filtered returns the entries whose level is visible, oldest first.
func (m *Manager) Filtered() []Entry {
	var out []Entry
	for _, e := range m.entries {
		if m.visible[e.Level] {
			out = append(out, e)
		}
	}
	return out
}

// SetLevelVisible toggles a level in the filter.
func (m *Manager) SetLevelVisible(level Level, visible bool) {
	if visible {
		m.visible[level] = true
	} else {
		delete(m.visible, level)
	}
}

// IsLevelVisible reports whether a level passes the filter.
func (m *Manager) IsLevelVisible(level Level) bool {
	return m.visible[level]
}

// Len returns the number of buffered entries.
func (m *Manager) Len() int {
	return len(m.entries)
}
