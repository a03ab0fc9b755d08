// Package logger captures shell interaction events as JSON lines.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Recorder is a callback that stores events in an external datastore.
type Recorder func(e *Entry) error

// Logger writes interaction events for a shell process.
type Logger struct {
	Record Recorder
}

// Entry is one logged event. Exactly one of the event fields is set.
type Entry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id"`

	SessionStart *SessionStart `json:"session_start,omitempty"`
	SessionEnd   *SessionEnd   `json:"session_end,omitempty"`
	Line         *Line         `json:"line,omitempty"`
	Builtin      *Builtin      `json:"builtin,omitempty"`
	RunError     *RunError     `json:"run_error,omitempty"`
}

type SessionStart struct {
	User string `json:"user,omitempty"`
}

type SessionEnd struct{}

// Line records one finalized command line.
type Line struct {
	Command string `json:"command"`
}

// Builtin records a dispatched built-in command.
type Builtin struct {
	Name string `json:"name"`
}

// RunError records a pipeline construction or execution failure.
type RunError struct {
	Command string `json:"command"`
	Error   string `json:"error"`
}

// NewJSONLinesRecorder creates a Logger that exports events in newline
// delimited JSON object format.
func NewJSONLinesRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(e *Entry) error {
			entry, err := json.Marshal(e)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewNopLogger creates a Logger that discards everything. Used when the
// command log cannot be opened; logging never takes the shell down.
func NewNopLogger() *Logger {
	return &Logger{Record: func(e *Entry) error { return nil }}
}

// NewSession creates a logger with an attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// SessionLogger tags every event with its session.
type SessionLogger struct {
	logger    *Logger
	sessionID string
}

func (sl *SessionLogger) record(fill func(e *Entry)) {
	e := &Entry{
		TimestampMicros: time.Now().UnixMicro(),
		SessionID:       sl.sessionID,
	}
	fill(e)
	_ = sl.logger.Record(e)
}

func (sl *SessionLogger) SessionStart(user string) {
	sl.record(func(e *Entry) { e.SessionStart = &SessionStart{User: user} })
}

func (sl *SessionLogger) SessionEnd() {
	sl.record(func(e *Entry) { e.SessionEnd = &SessionEnd{} })
}

func (sl *SessionLogger) Line(command string) {
	sl.record(func(e *Entry) { e.Line = &Line{Command: command} })
}

func (sl *SessionLogger) Builtin(name string) {
	sl.record(func(e *Entry) { e.Builtin = &Builtin{Name: name} })
}

func (sl *SessionLogger) RunError(command string, err error) {
	sl.record(func(e *Entry) { e.RunError = &RunError{Command: command, Error: err.Error()} })
}
