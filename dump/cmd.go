package dump

import (
	"io"
	"log"
	"os"

	"github.com/bookdata/oldump"
	"github.com/pkg/errors"
)

// Main contains the configuration for one extraction run.
type Main struct {
	Path        string `help:"Dump file to read. Gzip framing is detected from the content. '-' or empty reads stdin."`
	Output      string `help:"File to write ndjson output to. Empty writes stdout."`
	Editions    bool   `help:"Fold edition records into the book output. Editions carry publish dates, page counts, and goodreads ids that works don't."`
	Concurrency int    `help:"Number of concurrent decode/normalize workers. Values above 1 stop preserving dump order in the output."`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Path:        "-",
		Editions:    true,
		Concurrency: 1,
	}
}

// Run extracts authors and books from the dump and reports a summary on the
// standard logger. The summary covers whatever was processed even when Run
// returns an error.
func (m *Main) Run() error {
	in, err := m.openInput()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := m.openOutput()
	if err != nil {
		return err
	}

	ex := oldump.NewExtractor(
		NewLineSource(in),
		&oldump.Normalizer{Editions: m.Editions},
		oldump.NewEmitter(out),
	)
	ex.Concurrency = m.Concurrency

	runErr := ex.Run()
	log.Printf("%v", ex.Stats())

	if out != os.Stdout {
		if cerr := out.Close(); runErr == nil {
			runErr = errors.Wrap(cerr, "closing output")
		}
	}
	return errors.Wrap(runErr, "extracting")
}

func (m *Main) openInput() (io.ReadCloser, error) {
	if m.Path == "" || m.Path == "-" {
		r, err := NewReader(os.Stdin)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(r), nil
	}
	return OpenReader(m.Path)
}

func (m *Main) openOutput() (*os.File, error) {
	if m.Output == "" {
		return os.Stdout, nil
	}
	f, err := os.Create(m.Output)
	return f, errors.Wrapf(err, "creating %s", m.Output)
}
