package oldump

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Error is a constant error type.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrMalformedLine is the cause of errors returned from ParseLine when a
	// line doesn't have exactly five tab-separated columns, or when its
	// revision column isn't a non-negative integer.
	ErrMalformedLine = Error("malformed dump line")

	// ErrMalformedPayload is the cause of errors returned from ParseLine
	// when the five columns are present but the payload column isn't valid
	// JSON. The structural columns of such a line are known, but the record
	// is useless without its payload.
	ErrMalformedPayload = Error("malformed record payload")
)

// RawRecord is one decoded line of the dump, prior to normalization. Payload
// holds the fifth column as a generic JSON tree (map[string]interface{},
// []interface{}, or scalars) since the dump's payload shapes are irregular
// across entity types and revisions.
type RawRecord struct {
	Type         string
	Key          string
	Revision     uint64
	LastModified string
	Payload      interface{}
}

// ParseLine decodes one dump line into a RawRecord. Errors have
// ErrMalformedLine or ErrMalformedPayload as their cause; both mean the line
// should be skipped and counted, never that the pass should stop.
func ParseLine(line string) (RawRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 5 {
		return RawRecord{}, errors.Wrapf(ErrMalformedLine, "%d columns", len(fields))
	}

	rev, err := strconv.ParseUint(unquote(fields[2]), 10, 64)
	if err != nil {
		return RawRecord{}, errors.Wrapf(ErrMalformedLine, "revision %q", fields[2])
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(fields[4]), &payload); err != nil {
		return RawRecord{}, errors.Wrapf(ErrMalformedPayload, "%v", err)
	}

	return RawRecord{
		Type:         unquote(fields[0]),
		Key:          unquote(fields[1]),
		Revision:     rev,
		LastModified: unquote(fields[3]),
		Payload:      payload,
	}, nil
}

// unquote strips csv-style quoting from a column. Some dump tooling writes
// the structural columns through a csv encoder, so "/type/author" and
// /type/author are the same value.
func unquote(field string) string {
	if len(field) >= 2 && field[0] == '"' && field[len(field)-1] == '"' {
		return strings.ReplaceAll(field[1:len(field)-1], `""`, `"`)
	}
	return field
}
