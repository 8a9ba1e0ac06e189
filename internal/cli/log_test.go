package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("render complete") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("layout cached") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("layout cached") }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("session save failed") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf strings.Builder
	newLogger(&buf, log.InfoLevel).Info("archive saved")

	fields := strings.Fields(buf.String())
	if len(fields) < 2 {
		t.Fatalf("output = %q", buf.String())
	}
	if _, err := time.Parse("15:04:05.00", fields[0]); err != nil {
		t.Errorf("timestamp %q: %v", fields[0], err)
	}
}

func TestProgressDone(t *testing.T) {
	var buf strings.Builder
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("page written", "path", "memo.jpg", "masked", 2, "drawn", 0)

	out := buf.String()
	for _, want := range []string{"page written", "path=memo.jpg", "masked=2", "drawn=0", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("a bare context should yield a usable logger")
	}

	var buf strings.Builder
	custom := newLogger(&buf, log.InfoLevel)
	got := loggerFromContext(withLogger(context.Background(), custom))
	if got != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	got.Info("shell started")
	if !strings.Contains(buf.String(), "shell started") {
		t.Error("attached logger should write to its buffer")
	}
}
