package cmd

import (
	"io"
	"log"
	"time"

	"github.com/bookdata/oldump/dump"
	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
)

// ExtractMain is wrapped by NewExtractCommand and only exported for testing
// purposes.
var ExtractMain *dump.Main

// NewExtractCommand returns a new cobra command wrapping ExtractMain.
func NewExtractCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	ExtractMain = dump.NewMain()
	extractCommand := &cobra.Command{
		Use:   "extract",
		Short: "stream a dump file and write book/author records as ndjson",
		Long: `Reads an Open Library data dump (gzipped or plain tab-separated
text), normalizes its author, work, and optionally edition records, and
writes them as one JSON object per line. Records of any other type, and
records too damaged to use, are skipped and counted in the summary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err := ExtractMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := extractCommand.Flags()
	if err := commandeer.Flags(flags, ExtractMain); err != nil {
		panic(err)
	}
	return extractCommand
}

func init() {
	subcommandFns["extract"] = NewExtractCommand
}
