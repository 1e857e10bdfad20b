package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	type spec struct {
		in     string
		exp    Level
		expErr bool
	}
	specs := []spec{
		{"debug", Debug, false},
		{"INFO", Info, false},
		{"", Notice, false},
		{"warn", Warning, false},
		{" warning ", Warning, false},
		{"error", Error, false},
		{"loud", Notice, true},
	}

	for index, s := range specs {
		level, err := ParseLevel(s.in)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error for %q", index, s.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if level != s.exp {
			t.Fatalf("[spec %d] expected level %d; got %d", index, s.exp, level)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(nopWriter{})

	logger := New("test")

	SetLevel(Warning)
	logger.Info("hidden message")
	logger.Warning("shown message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Fatalf("expected info message to be filtered; got %q", out)
	}
	if !strings.Contains(out, "shown message") {
		t.Fatalf("expected warning message in output; got %q", out)
	}
	if !strings.Contains(out, "[test]") {
		t.Fatalf("expected module name in output; got %q", out)
	}
}

func TestSetSinkKeepsLevel(t *testing.T) {
	SetLevel(Debug)
	defer SetLevel(Notice)

	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(nopWriter{})

	New("sink").Debug("debug after swap")
	if !strings.Contains(buf.String(), "debug after swap") {
		t.Fatalf("expected the debug level to survive the sink swap; got %q", buf.String())
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
