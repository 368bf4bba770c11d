// Package audit provides structured logging for workflow transitions.
// Log entries follow a key=value format suitable for parsing and analysis.
package audit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of workflow event.
type EventType string

// Event types for workflow transitions.
const (
	EventStage   EventType = "STAGE"
	EventRelease EventType = "RELEASE"
	EventEmpty   EventType = "EMPTY"
	EventReject  EventType = "REJECT"
)

// Event represents a single audit log entry.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Type is the event type (STAGE, RELEASE, etc.)
	Type EventType

	// RequestID correlates the event with operational log lines.
	RequestID string

	// Path is the request path that triggered the event.
	Path string

	// Cmd is the staged or released command, after sanitizing.
	Cmd string

	// Raw is the command as submitted (STAGE only, omitted when identical to Cmd).
	Raw string

	// Next is the capability path minted by this transition (STAGE only).
	Next string

	// Queued is the queue depth after the transition (STAGE and RELEASE).
	Queued int

	// Reason explains a rejection (REJECT only).
	Reason string
}

// Format returns the log entry as a formatted string.
// Format: 2024-01-15T14:32:05Z SHTACK STAGE req=abc path="/push" cmd="ls" next="/push/1804289383" queued=1
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(" SHTACK ")
	b.WriteString(string(e.Type))

	if e.RequestID != "" {
		b.WriteString(" req=")
		b.WriteString(e.RequestID)
	}
	b.WriteString(" path=")
	b.WriteString(quoteValue(e.Path))

	switch e.Type {
	case EventStage:
		b.WriteString(" cmd=")
		b.WriteString(quoteValue(e.Cmd))
		if e.Raw != e.Cmd {
			writeOptionalField(&b, "raw", e.Raw)
		}
		writeOptionalField(&b, "next", e.Next)
		b.WriteString(" queued=")
		b.WriteString(strconv.Itoa(e.Queued))
	case EventRelease:
		b.WriteString(" cmd=")
		b.WriteString(quoteValue(e.Cmd))
		b.WriteString(" queued=")
		b.WriteString(strconv.Itoa(e.Queued))
	case EventReject:
		writeOptionalField(&b, "reason", e.Reason)
	}

	return b.String()
}

// writeOptionalField appends " key=quoted_value" to the builder if value is non-empty.
func writeOptionalField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(quoteValue(value))
}

// quoteValue returns a quoted string value.
// Values are always quoted for consistency and to handle spaces/special chars.
func quoteValue(s string) string {
	return fmt.Sprintf("%q", s)
}

// Logger writes audit events to an io.Writer.
// A nil *Logger is valid and discards all events.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLogger creates a new audit logger that writes to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Log writes an event to the audit log.
func (l *Logger) Log(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := e.Format() + "\n"
	_, err := l.w.Write([]byte(line))
	if err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

func (l *Logger) timestamp() time.Time {
	if l == nil || l.now == nil {
		return time.Now()
	}
	return l.now()
}

// LogStage logs a STAGE event: raw was submitted on path, cmd was pushed,
// and next was minted.
func (l *Logger) LogStage(reqID, path, raw, cmd, next string, queued int) error {
	return l.Log(&Event{
		Timestamp: l.timestamp(),
		Type:      EventStage,
		RequestID: reqID,
		Path:      path,
		Cmd:       cmd,
		Raw:       raw,
		Next:      next,
		Queued:    queued,
	})
}

// LogRelease logs a RELEASE event.
func (l *Logger) LogRelease(reqID, path, cmd string, queued int) error {
	return l.Log(&Event{
		Timestamp: l.timestamp(),
		Type:      EventRelease,
		RequestID: reqID,
		Path:      path,
		Cmd:       cmd,
		Queued:    queued,
	})
}

// LogEmpty logs an EMPTY event: a pop capability was consumed with nothing staged.
func (l *Logger) LogEmpty(reqID, path string) error {
	return l.Log(&Event{
		Timestamp: l.timestamp(),
		Type:      EventEmpty,
		RequestID: reqID,
		Path:      path,
	})
}

// LogReject logs a REJECT event.
func (l *Logger) LogReject(reqID, path, reason string) error {
	return l.Log(&Event{
		Timestamp: l.timestamp(),
		Type:      EventReject,
		RequestID: reqID,
		Path:      path,
		Reason:    reason,
	})
}
