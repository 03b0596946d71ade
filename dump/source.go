package dump

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// gzip magic per RFC 1952.
var gzipMagic = []byte{0x1f, 0x8b}

// NewReader wraps r so that gzip-framed input is decompressed incrementally
// and anything else passes through. It decides by peeking at the first two
// bytes, which works for files and stdin alike. Decompression never
// materializes the stream: gzip blocks inflate on demand as the next stage
// pulls bytes.
func NewReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	head, err := br.Peek(2)
	if err != nil {
		// Shorter than two bytes means not gzip; let the line source see
		// whatever is there.
		if err == io.EOF {
			return br, nil
		}
		return nil, errors.Wrap(err, "peeking at stream head")
	}
	if !bytes.Equal(head, gzipMagic) {
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, errors.Wrap(err, "opening gzip stream")
	}
	return zr, nil
}

// OpenReader opens the dump at path, unwrapping gzip framing when the
// content calls for it. The returned closer closes both the decompressor
// and the underlying file.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &readCloser{r: r, f: f}, nil
}

type readCloser struct {
	r io.Reader
	f *os.File
}

func (rc *readCloser) Read(p []byte) (int, error) { return rc.r.Read(p) }

func (rc *readCloser) Close() error {
	err := rc.f.Close()
	if zr, ok := rc.r.(*gzip.Reader); ok {
		if zerr := zr.Close(); err == nil {
			err = zerr
		}
	}
	return err
}

// LineSource is an oldump.Source yielding one dump line at a time. It reads
// through a buffered reader rather than a Scanner because dump payloads
// routinely exceed any fixed token size. Safe for concurrent use.
type LineSource struct {
	mu   sync.Mutex
	r    *bufio.Reader
	line int
	done bool
}

// NewLineSource returns a LineSource reading from r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: bufio.NewReaderSize(r, 1<<20)}
}

// Record returns the next line without its trailing newline, or io.EOF at
// clean end-of-stream. A final line with no trailing newline is still a
// line. Any other error means the byte stream itself failed (a truncated or
// corrupt gzip member surfaces here) and is fatal to the pass.
func (s *LineSource) Record() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return "", io.EOF
	}
	line, err := s.r.ReadString('\n')
	if err == io.EOF {
		s.done = true
		if line == "" {
			return "", io.EOF
		}
		s.line++
		return strings.TrimSuffix(line, "\r"), nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading line %d", s.line+1)
	}
	s.line++
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// Line returns the number of lines read so far.
func (s *LineSource) Line() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.line
}
