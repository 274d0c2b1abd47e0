package rpc

import (
	"bytes"
	"strings"
)

// Framer splits a raw byte stream into complete newline-terminated lines.
// Chunks may end mid-line; the trailing partial is buffered until the rest
// arrives. Framer is a pure synchronous transform and never blocks.
//
// Framer is not safe for concurrent use; each stream owns its own instance.
type Framer struct {
	buf bytes.Buffer
}

// Push appends a chunk and returns every complete line it unlocked, in
// order, without the trailing newline. Blank lines are dropped.
func (f *Framer) Push(chunk []byte) []string {
	f.buf.Write(chunk)

	var lines []string
	for {
		raw := f.buf.Bytes()
		idx := bytes.IndexByte(raw, '\n')
		if idx < 0 {
			return lines
		}
		line := strings.TrimRight(string(raw[:idx]), "\r")
		f.buf.Next(idx + 1)
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
}

// Pending returns the number of buffered bytes awaiting a newline.
func (f *Framer) Pending() int {
	return f.buf.Len()
}
