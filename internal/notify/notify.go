// Package notify delivers user-facing success and failure messages.
package notify

import (
	"log/slog"
	"sync"
)

// Notifier is the user-notification sink the stores report to.
type Notifier interface {
	Success(msg string)
	Error(msg string, err error)
}

// Logger reports notifications through slog.
type Logger struct {
	log *slog.Logger
}

// NewLogger returns a Notifier writing to logger, or slog.Default when nil.
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{log: logger}
}

func (l *Logger) Success(msg string) {
	l.log.Info(msg)
}

func (l *Logger) Error(msg string, err error) {
	l.log.Error(msg, slog.String("error", errString(err)))
}

// Multi fans a notification out to every sink.
func Multi(sinks ...Notifier) Notifier {
	return multi(sinks)
}

type multi []Notifier

func (m multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m multi) Error(msg string, err error) {
	for _, n := range m {
		n.Error(msg, err)
	}
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Success(string)       {}
func (discard) Error(string, error) {}

// Message is one recorded notification.
type Message struct {
	OK   bool
	Text string
	Err  error
}

// Recorder keeps notifications in memory. Useful in tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{OK: true, Text: msg})
}

func (r *Recorder) Error(msg string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: msg, Err: err})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Errors returns only the failure notifications.
func (r *Recorder) Errors() []Message {
	var out []Message
	for _, m := range r.Messages() {
		if !m.OK {
			out = append(out, m)
		}
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
