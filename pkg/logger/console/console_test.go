package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLogger_WritesKeyvals(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Output: &buf, Prefix: "server"})

	l.Info("File uploaded", "file_id", "abc")
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "File uploaded") || !strings.Contains(out, "file_id=abc") {
		t.Fatalf("output = %q, want message with file_id=abc", out)
	}
	if !strings.Contains(out, "server") {
		t.Fatalf("output = %q, want prefix", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %q", out)
	}
}

func TestConsoleLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Output: &buf, JSON: true, Debug: true})

	l.Debug("Analysis finished", "tags", 4)

	out := buf.String()
	if !strings.Contains(out, `"msg":"Analysis finished"`) || !strings.Contains(out, `"tags":4`) {
		t.Fatalf("output = %q, want JSON line", out)
	}
}
