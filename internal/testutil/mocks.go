package testutil

import (
	"errors"
	"sync"
)

// ErrMockWrite is returned by FailingWriter
var ErrMockWrite = errors.New("mock write failure")

// FailingWriter is an io.Writer that fails after Limit bytes
type FailingWriter struct {
	Limit   int
	written int
}

// Write implements io.Writer
func (w *FailingWriter) Write(p []byte) (int, error) {
	if w.written+len(p) > w.Limit {
		n := w.Limit - w.written
		w.written = w.Limit
		return n, ErrMockWrite
	}
	w.written += len(p)
	return len(p), nil
}

// RecordingNotifier collects user-facing notifications in order
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages []string
}

// Notify records a message
func (n *RecordingNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, msg)
}

// Last returns the most recent message or an empty string
func (n *RecordingNotifier) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Messages) == 0 {
		return ""
	}
	return n.Messages[len(n.Messages)-1]
}
