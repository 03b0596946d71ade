package oldump

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Stats counts what happened to every line of a pass. Lines is the total
// read; each line lands in exactly one of the other counters.
type Stats struct {
	Lines             uint64
	Authors           uint64
	Books             uint64
	MalformedLines    uint64
	MalformedPayloads uint64
	UnrecognizedTypes uint64
	MissingFields     uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("%d lines: %d authors, %d books; skipped %d malformed lines, %d malformed payloads, %d unrecognized types, %d missing required fields",
		s.Lines, s.Authors, s.Books, s.MalformedLines, s.MalformedPayloads, s.UnrecognizedTypes, s.MissingFields)
}

// Extractor runs the whole pipeline: it pulls lines from a Source, decodes
// and normalizes them, and hands normalized records to an Emitter. Only
// stream-level errors (a corrupt gzip stream, a failing sink) end the run;
// every per-record condition is absorbed into Stats.
type Extractor struct {
	// Concurrency is the number of decode/normalize workers. Each line is
	// independently decodable, so fanning out is safe, but output order is
	// only input order when Concurrency is 1.
	Concurrency int

	src   Source
	norm  *Normalizer
	em    *Emitter
	stats Stats
}

// NewExtractor returns an Extractor with the default single-worker
// configuration, which preserves input order in the output.
func NewExtractor(src Source, norm *Normalizer, em *Emitter) *Extractor {
	return &Extractor{
		Concurrency: 1,
		src:         src,
		norm:        norm,
		em:          em,
	}
}

// Run processes the source to end-of-stream and flushes the emitter. Stats
// are valid afterward whether or not Run returns an error.
func (ex *Extractor) Run() error {
	workers := ex.Concurrency
	if workers < 1 {
		workers = 1
	}
	lines := make(chan string, 64)

	eg, ctx := errgroup.WithContext(context.Background())
	eg.Go(func() error {
		defer close(lines)
		for {
			line, err := ex.src.Record()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "reading dump")
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				// A worker already failed; its error wins.
				return nil
			}
		}
	})
	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			for line := range lines {
				if err := ex.process(line); err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := eg.Wait()
	if ferr := ex.em.Flush(); err == nil {
		err = ferr
	}
	return err
}

// process handles one line. A non-nil return is a sink failure; everything
// the line itself can do wrong is counted and swallowed.
func (ex *Extractor) process(line string) error {
	atomic.AddUint64(&ex.stats.Lines, 1)

	rec, err := ParseLine(line)
	if err != nil {
		switch errors.Cause(err) {
		case ErrMalformedPayload:
			atomic.AddUint64(&ex.stats.MalformedPayloads, 1)
		default:
			atomic.AddUint64(&ex.stats.MalformedLines, 1)
		}
		log.Printf("skipping line %.60q: %v", line, err)
		return nil
	}

	out, reason := ex.norm.Normalize(rec)
	if out == nil {
		switch reason {
		case SkipMissingField:
			atomic.AddUint64(&ex.stats.MissingFields, 1)
		default:
			atomic.AddUint64(&ex.stats.UnrecognizedTypes, 1)
		}
		return nil
	}

	if err := ex.em.Emit(out); err != nil {
		return err
	}
	switch out.(type) {
	case *Author:
		atomic.AddUint64(&ex.stats.Authors, 1)
	case *Book:
		atomic.AddUint64(&ex.stats.Books, 1)
	}
	return nil
}

// Stats returns a snapshot of the counters. It is safe to call while Run is
// in flight.
func (ex *Extractor) Stats() Stats {
	return Stats{
		Lines:             atomic.LoadUint64(&ex.stats.Lines),
		Authors:           atomic.LoadUint64(&ex.stats.Authors),
		Books:             atomic.LoadUint64(&ex.stats.Books),
		MalformedLines:    atomic.LoadUint64(&ex.stats.MalformedLines),
		MalformedPayloads: atomic.LoadUint64(&ex.stats.MalformedPayloads),
		UnrecognizedTypes: atomic.LoadUint64(&ex.stats.UnrecognizedTypes),
		MissingFields:     atomic.LoadUint64(&ex.stats.MissingFields),
	}
}
