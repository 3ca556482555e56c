package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

type testLogger struct {
	entries []string
}

func (l *testLogger) Info(_ map[string]any, msg string)  { l.entries = append(l.entries, "INFO:"+msg) }
func (l *testLogger) Error(_ map[string]any, msg string) { l.entries = append(l.entries, "ERROR:"+msg) }
func (l *testLogger) Debug(_ map[string]any, msg string) { l.entries = append(l.entries, "DEBUG:"+msg) }
func (l *testLogger) Warn(_ map[string]any, msg string)  { l.entries = append(l.entries, "WARN:"+msg) }
func (l *testLogger) Panic(_ map[string]any, msg string) {}
func (l *testLogger) Fatal(_ map[string]any, msg string) {}

func TestNew_WritesJSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, zapcore.InfoLevel)

	l.Info(map[string]any{"qname": "donar.measurement-lab.org", "count": 2}, "answered")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "answered" {
		t.Errorf("msg = %v, want answered", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["qname"] != "donar.measurement-lab.org" {
		t.Errorf("qname = %v", entry["qname"])
	}
	if entry["count"] != float64(2) {
		t.Errorf("count = %v, want 2", entry["count"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, zapcore.WarnLevel)

	l.Debug(nil, "debug")
	l.Info(nil, "info")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	l.Warn(nil, "warn")
	l.Error(nil, "error")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
}

func TestNew_DevConsoleEncoder(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true, zapcore.DebugLevel)
	l.Debug(map[string]any{"line": "HELO\t1"}, "handshake")
	if !strings.Contains(buf.String(), "handshake") {
		t.Errorf("expected message in console output, got %q", buf.String())
	}
}

func TestZapFields_SortedByKey(t *testing.T) {
	fields := zapFields(map[string]any{"b": 1, "a": 2, "c": 3})
	got := make([]string, 0, len(fields))
	for _, f := range fields {
		got = append(got, f.Key)
	}
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("field order = %v, want a,b,c", got)
	}
	if len(zapFields(nil)) != 0 {
		t.Error("expected no fields for nil map")
	}
}

func TestPanicLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, zapcore.InfoLevel)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic, but none occurred")
		}
	}()
	l.Panic(nil, "test panic")
}

func TestSetLoggerAndGlobalLogging(t *testing.T) {
	orig := GetLogger()
	defer func() {
		SetLogger(orig)
	}()
	tlog := &testLogger{}
	SetLogger(tlog)

	Info(nil, "info msg")
	Error(nil, "error msg")
	Debug(nil, "debug msg")
	Warn(nil, "warn msg")

	expected := []string{
		"INFO:info msg",
		"ERROR:error msg",
		"DEBUG:debug msg",
		"WARN:warn msg",
	}

	if len(tlog.entries) != len(expected) {
		t.Fatalf("expected %d log entries, got %d", len(expected), len(tlog.entries))
	}
	for i, msg := range expected {
		if tlog.entries[i] != msg {
			t.Errorf("expected log[%d] = %q, got %q", i, msg, tlog.entries[i])
		}
	}
}

func TestConfigure_ValidLevels(t *testing.T) {
	orig := GetLogger()
	defer func() {
		SetLogger(orig)
	}()

	for _, lvl := range []string{"debug", "info", "warn", "error", "INFO"} {
		if err := Configure("dev", lvl); err != nil {
			t.Errorf("Configure(dev, %q) unexpected error: %v", lvl, err)
		}
		if err := Configure("prod", lvl); err != nil {
			t.Errorf("Configure(prod, %q) unexpected error: %v", lvl, err)
		}
	}
}

func TestConfigure_InvalidLevel(t *testing.T) {
	orig := GetLogger()
	defer func() {
		SetLogger(orig)
	}()

	if err := Configure("dev", "notalevel"); err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
}

func TestNoopLogger_TestAllLevels(t *testing.T) {
	orig := GetLogger()
	defer func() {
		SetLogger(orig)
	}()
	SetLogger(NewNoopLogger())

	Debug(nil, "debug message")
	Info(nil, "info message")
	Warn(nil, "warn message")
	Error(nil, "error message")
	Panic(nil, "panic message")
	Fatal(nil, "fatal message")
}
