package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBuffered(t *testing.T, cfg Config) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = SetLevel("info") })
	return l, &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

// ============================================================================
// Construction
// ============================================================================

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"default config", DefaultConfig(), nil},
		{"zero config", Config{}, nil},
		{"text", Config{Level: "debug", Format: "text"}, nil},
		{"console alias", Config{Format: "console"}, nil},
		{"bad level", Config{Level: "loud"}, ErrInvalidLevel},
		{"bad format", Config{Format: "xml"}, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { _ = SetLevel("info") })
			l, err := New(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestNew_Attrs(t *testing.T) {
	l, buf := newBuffered(t, Config{Attrs: []any{"service", "redif-server"}})

	l.Info("started")

	if got := lastEntry(t, buf)["service"]; got != "redif-server" {
		t.Errorf("service = %v, want redif-server", got)
	}
}

// ============================================================================
// Output
// ============================================================================

func TestLogger_Levels(t *testing.T) {
	l, buf := newBuffered(t, Config{Level: "debug"})

	tests := []struct {
		level string
		log   func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.log("frame decoded", "conn_id", "01J0000000000000000000000")

			entry := lastEntry(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["msg"] != "frame decoded" {
				t.Errorf("msg = %v", entry["msg"])
			}
			if entry["conn_id"] != "01J0000000000000000000000" {
				t.Errorf("conn_id = %v", entry["conn_id"])
			}
		})
	}
}

func TestComponent(t *testing.T) {
	l, buf := newBuffered(t, Config{})

	Component(l, "storage").Info("opened", "engine", "badger")

	entry := lastEntry(t, buf)
	if entry["component"] != "storage" || entry["engine"] != "badger" {
		t.Errorf("entry = %v", entry)
	}
}

func TestLogger_TextFormat(t *testing.T) {
	l, buf := newBuffered(t, Config{Format: FormatText})

	l.WithContext(context.Background()).Info("listening", "addr", "127.0.0.1:4400")

	if out := buf.String(); !strings.Contains(out, "msg=listening") || !strings.Contains(out, "addr=127.0.0.1:4400") {
		t.Errorf("text output = %q", out)
	}
}

// ============================================================================
// Levels
// ============================================================================

func TestSetLevel(t *testing.T) {
	l, buf := newBuffered(t, Config{Level: "error"})
	derived := Component(l, "redif")

	derived.Warn("dropped")
	if buf.Len() > 0 {
		t.Fatal("Warn should be filtered at error level")
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	derived.Debug("visible")
	if buf.Len() == 0 {
		t.Error("derived logger should follow the global level")
	}
	if got := GetLevel(); got != "debug" {
		t.Errorf("GetLevel() = %q, want debug", got)
	}

	if err := SetLevel("verbose"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("SetLevel(verbose) error = %v, want ErrInvalidLevel", err)
	}
	if got := GetLevel(); got != "debug" {
		t.Errorf("failed SetLevel changed level to %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"", "json", "TEXT", "console"} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", f, err)
		}
	}
	if err := ValidateFormat("logfmt"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ValidateFormat(logfmt) = %v, want ErrInvalidFormat", err)
	}
}

// ============================================================================
// Default logger
// ============================================================================

func TestSetDefault(t *testing.T) {
	prevDefault, prevSlog := Default(), slog.Default()
	t.Cleanup(func() {
		SetDefault(prevDefault)
		slog.SetDefault(prevSlog)
	})

	l, buf := newBuffered(t, Config{Level: "debug"})
	SetDefault(l)

	tests := []struct {
		name string
		log  func(string, ...any)
	}{
		{"Debug", Debug},
		{"Info", Info},
		{"Warn", Warn},
		{"Error", Error},
		{"slog", slog.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log("test message")
			if buf.Len() == 0 {
				t.Errorf("%s() produced no output", tt.name)
			}
		})
	}
}

func TestSlog(t *testing.T) {
	l, buf := newBuffered(t, Config{})

	Slog(l).Info("via slog", "key", "value")

	if got := lastEntry(t, buf)["key"]; got != "value" {
		t.Errorf("key = %v, want value", got)
	}
	if Slog(foreignLogger{}) != slog.Default() {
		t.Error("Slog(foreign) should return slog.Default()")
	}
}

type foreignLogger struct{ Logger }
