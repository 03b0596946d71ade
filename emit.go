package oldump

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Emitter serializes normalized records as newline-delimited JSON. It is
// safe for concurrent use: each record is written as one atomic line, though
// the order of lines from concurrent callers is unspecified. Output is
// buffered; call Flush when the pass is done.
type Emitter struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewEmitter returns an Emitter writing ndjson to w.
func NewEmitter(w io.Writer) *Emitter {
	bw := bufio.NewWriter(w)
	return &Emitter{
		w:   bw,
		enc: json.NewEncoder(bw),
	}
}

// Emit writes rec as one JSON object terminated by a newline. A write error
// here is a sink-level failure and should end the run.
func (e *Emitter) Emit(rec interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return errors.Wrap(e.enc.Encode(rec), "encoding record")
}

// Flush writes any buffered output through to the underlying writer.
func (e *Emitter) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return errors.Wrap(e.w.Flush(), "flushing output")
}
