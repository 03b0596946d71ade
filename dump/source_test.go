package dump

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

func mustGzip(t *testing.T, content string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	if _, err := io.WriteString(zw, content); err != nil {
		t.Fatalf("writing gzip content: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

func readAllLines(t *testing.T, s *LineSource) []string {
	t.Helper()
	var lines []string
	for {
		line, err := s.Record()
		if err == io.EOF {
			return lines
		}
		if err != nil {
			t.Fatalf("reading line: %v", err)
		}
		lines = append(lines, line)
	}
}

func TestNewReaderGzip(t *testing.T) {
	r, err := NewReader(bytes.NewReader(mustGzip(t, "hello\nworld\n")))
	if err != nil {
		t.Fatalf("getting reader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if string(got) != "hello\nworld\n" {
		t.Errorf("got %q", got)
	}
}

func TestNewReaderPlain(t *testing.T) {
	r, err := NewReader(strings.NewReader("hello\nworld\n"))
	if err != nil {
		t.Fatalf("getting reader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if string(got) != "hello\nworld\n" {
		t.Errorf("got %q", got)
	}
}

func TestNewReaderEmpty(t *testing.T) {
	r, err := NewReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("getting reader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil || len(got) != 0 {
		t.Errorf("got (%q, %v), want empty", got, err)
	}
}

func TestNewReaderTruncatedStream(t *testing.T) {
	full := mustGzip(t, strings.Repeat("a line of dump text\n", 5000))
	r, err := NewReader(bytes.NewReader(full[:len(full)/2]))
	if err != nil {
		t.Fatalf("getting reader: %v", err)
	}
	if _, err := io.ReadAll(r); err == nil {
		t.Error("expected an error from a truncated gzip stream")
	}
}

func TestLineSource(t *testing.T) {
	s := NewLineSource(strings.NewReader("one\ttwo\nthree\n\nfour"))
	lines := readAllLines(t, s)
	want := []string{"one\ttwo", "three", "", "four"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
	if s.Line() != 4 {
		t.Errorf("got line count %d, want 4", s.Line())
	}
	// Keeps returning io.EOF once drained.
	if _, err := s.Record(); err != io.EOF {
		t.Errorf("got %v after end, want io.EOF", err)
	}
}

func TestLineSourceNoTrailingNewline(t *testing.T) {
	// The last line of a file often has no trailing newline; it's still a
	// complete record.
	s := NewLineSource(strings.NewReader("first\nlast"))
	lines := readAllLines(t, s)
	if len(lines) != 2 || lines[1] != "last" {
		t.Fatalf("got %q, want the unterminated last line", lines)
	}
}

func TestLineSourceEmpty(t *testing.T) {
	s := NewLineSource(strings.NewReader(""))
	if _, err := s.Record(); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}

func TestLineSourceCRLF(t *testing.T) {
	s := NewLineSource(strings.NewReader("one\r\ntwo\r\n"))
	lines := readAllLines(t, s)
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("got %q", lines)
	}
}

func TestLineSourceLongLine(t *testing.T) {
	// Payloads routinely blow past bufio.Scanner's default token size; the
	// source must not care.
	long := strings.Repeat("x", 1<<21)
	s := NewLineSource(strings.NewReader("short\n" + long + "\n"))
	lines := readAllLines(t, s)
	if len(lines) != 2 || len(lines[1]) != 1<<21 {
		t.Fatalf("long line mangled: got %d lines", len(lines))
	}
}

func TestLineSourceSurfacesStreamError(t *testing.T) {
	full := mustGzip(t, strings.Repeat("a line of dump text\n", 5000))
	r, err := NewReader(bytes.NewReader(full[:len(full)/2]))
	if err != nil {
		t.Fatalf("getting reader: %v", err)
	}
	s := NewLineSource(r)
	for {
		_, err = s.Record()
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		t.Fatal("truncated stream ended with a clean EOF")
	}
	if cause := errors.Cause(err); cause != io.ErrUnexpectedEOF {
		t.Logf("cause: %v", cause) // exact error depends on where the cut fell
	}
}
