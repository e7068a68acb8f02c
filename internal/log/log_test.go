package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		logFunc func(Logger)
		want    []string
		notWant []string
	}{
		{
			name: "text format default level",
			cfg:  Config{},
			logFunc: func(l Logger) {
				l.Info("hello", "key", "value")
			},
			want: []string{"hello", "key=value"},
		},
		{
			name: "debug suppressed at info level",
			cfg:  Config{Level: slog.LevelInfo},
			logFunc: func(l Logger) {
				l.Debug("invisible")
			},
			notWant: []string{"invisible"},
		},
		{
			name: "debug visible at debug level",
			cfg:  Config{Level: slog.LevelDebug},
			logFunc: func(l Logger) {
				l.Debug("visible")
			},
			want: []string{"visible"},
		},
		{
			name: "json format",
			cfg:  Config{JSON: true},
			logFunc: func(l Logger) {
				l.Info("structured", "n", 42)
			},
			want: []string{`"msg":"structured"`, `"n":42`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(&buf, tt.cfg)
			tt.logFunc(logger)

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output %q should not contain %q", out, nw)
				}
			}
		})
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	// Must not panic and must accept all levels.
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")
}
