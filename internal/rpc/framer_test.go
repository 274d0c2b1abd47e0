package rpc

import (
	"strings"
	"testing"
)

func TestFramerSingleLine(t *testing.T) {
	var f Framer
	lines := f.Push([]byte("{\"jsonrpc\":\"2.0\"}\n"))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0] != `{"jsonrpc":"2.0"}` {
		t.Errorf("line: got %q", lines[0])
	}
}

func TestFramerSplitAcrossChunks(t *testing.T) {
	var f Framer

	lines := f.Push([]byte(`{"jsonrpc":"2.0","id":1,"resu`))
	if len(lines) != 0 {
		t.Fatalf("partial chunk: got %d lines, want 0", len(lines))
	}
	if f.Pending() == 0 {
		t.Error("expected buffered partial data")
	}

	lines = f.Push([]byte("lt\":5}\n"))
	if len(lines) != 1 {
		t.Fatalf("completing chunk: got %d lines, want 1", len(lines))
	}
	if lines[0] != `{"jsonrpc":"2.0","id":1,"result":5}` {
		t.Errorf("line: got %q", lines[0])
	}
	if f.Pending() != 0 {
		t.Errorf("pending: got %d, want 0", f.Pending())
	}
}

func TestFramerMultipleLinesOneChunk(t *testing.T) {
	var f Framer
	lines := f.Push([]byte("one\ntwo\nthree\n"))
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, want := range []string{"one", "two", "three"} {
		if lines[i] != want {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want)
		}
	}
}

func TestFramerSkipsBlankLines(t *testing.T) {
	var f Framer
	lines := f.Push([]byte("\n\r\n  \na\n"))
	if len(lines) != 1 || lines[0] != "a" {
		t.Fatalf("got %v, want [a]", lines)
	}
}

func TestFramerCRLF(t *testing.T) {
	var f Framer
	lines := f.Push([]byte("hello\r\nworld\r\n"))
	if len(lines) != 2 || lines[0] != "hello" || lines[1] != "world" {
		t.Fatalf("got %v", lines)
	}
}

func TestFramerByteAtATime(t *testing.T) {
	var f Framer
	msg := `{"jsonrpc":"2.0","id":42,"method":"x"}` + "\n"

	var lines []string
	for i := 0; i < len(msg); i++ {
		lines = append(lines, f.Push([]byte{msg[i]})...)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0] != strings.TrimSuffix(msg, "\n") {
		t.Errorf("line: got %q", lines[0])
	}
}
