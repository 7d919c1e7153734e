package processor

import (
	"fmt"
	"io"
)

// Notifier receives the short user-facing messages of a session, the
// toasts of the desktop window or the status lines of the command line
type Notifier interface {
	Notify(msg string)
}

// WriterNotifier prints each message on its own line
type WriterNotifier struct {
	W io.Writer
}

// Notify implements Notifier
func (n WriterNotifier) Notify(msg string) {
	fmt.Fprintln(n.W, msg)
}

type discardNotifier struct{}

func (discardNotifier) Notify(string) {}
