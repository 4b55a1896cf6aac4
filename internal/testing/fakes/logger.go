package fakes

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one recorded log call.
type Entry struct {
	Level   string // VERBOSE, INFO, WARN or ERROR
	Message string
}

// RecordingLogger implements simplepg.Logger and keeps every formatted message.
// Safe for concurrent use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Verbose(format string, args ...interface{}) { l.record("VERBOSE", format, args) }
func (l *RecordingLogger) Info(format string, args ...interface{})    { l.record("INFO", format, args) }
func (l *RecordingLogger) Warn(format string, args ...interface{})    { l.record("WARN", format, args) }
func (l *RecordingLogger) Error(format string, args ...interface{})   { l.record("ERROR", format, args) }

func (l *RecordingLogger) record(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Entries returns a copy of everything logged so far.
func (l *RecordingLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Messages returns the messages logged at level, in order.
func (l *RecordingLogger) Messages(level string) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Count returns how many messages were logged at level.
func (l *RecordingLogger) Count(level string) int {
	return len(l.Messages(level))
}

// CountPrefix returns how many messages at any level start with prefix.
func (l *RecordingLogger) CountPrefix(prefix string) int {
	n := 0
	for _, e := range l.Entries() {
		if strings.HasPrefix(e.Message, prefix) {
			n++
		}
	}
	return n
}
