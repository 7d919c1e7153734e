package gui

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/google/go-cmp/cmp"
)

func newTestLogViewer(t *testing.T) (*LogViewer, *string) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	v := NewLogViewer()
	v.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	shown := new(string)
	v.refresh = func(text string) { *shown = text }
	return v, shown
}

func TestLogViewerNewestFirst(t *testing.T) {
	v, shown := newTestLogViewer(t)

	v.AddMessage("first")
	v.Notify("second")

	want := []string{"[09:26:53] second", "[09:26:53] first"}
	if diff := cmp.Diff(want, v.Messages()); diff != "" {
		t.Errorf("Messages mismatch (-want +got):\n%s", diff)
	}
	if *shown != strings.Join(want, "\n") {
		t.Errorf("Unexpected entry text %q", *shown)
	}
}

func TestLogViewerWriteSplitsLines(t *testing.T) {
	v, _ := newTestLogViewer(t)

	input := []byte("level=INFO msg=one\n\n  level=WARN msg=two  \n")
	n, err := v.Write(input)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(input) {
		t.Errorf("Expected %d bytes written, got %d", len(input), n)
	}

	want := []string{"[09:26:53] level=WARN msg=two", "[09:26:53] level=INFO msg=one"}
	if diff := cmp.Diff(want, v.Messages()); diff != "" {
		t.Errorf("Messages mismatch (-want +got):\n%s", diff)
	}
}

func TestLogViewerLimitAndClear(t *testing.T) {
	v, shown := newTestLogViewer(t)
	v.maxMessages = 3

	for _, msg := range []string{"a", "b", "c", "d"} {
		v.AddMessage(msg)
	}
	if got := v.Messages(); len(got) != 3 || got[2] != "[09:26:53] b" {
		t.Errorf("Expected the 3 newest messages, got %v", got)
	}

	v.Clear()
	if len(v.Messages()) != 0 || *shown != "" {
		t.Error("Clear should drop all messages")
	}
}

func TestTeeLogger(t *testing.T) {
	v, _ := newTestLogViewer(t)

	var base strings.Builder
	baseLogger := slog.New(slog.NewTextHandler(&base, &slog.HandlerOptions{Level: slog.LevelDebug}))
	panel := slog.NewTextHandler(v, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := teeLogger(baseLogger, panel).With("component", "test")
	logger.Debug("debug only")
	logger.Info("both")

	if !strings.Contains(base.String(), "debug only") || !strings.Contains(base.String(), "msg=both") {
		t.Errorf("Base handler missed records: %q", base.String())
	}

	msgs := v.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 panel message, got %v", msgs)
	}
	if !strings.Contains(msgs[0], "msg=both") || !strings.Contains(msgs[0], "component=test") {
		t.Errorf("Unexpected panel message %q", msgs[0])
	}

	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Tee should be enabled when any handler is")
	}
}
