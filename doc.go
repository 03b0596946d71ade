// Package oldump turns Open Library data dumps into a normalized ndjson
// stream of book and author records.
//
// The dump is a gzipped tab-separated file with five columns per line: the
// record's type key, its entity key, a revision number, a last-modified
// timestamp, and a JSON payload carrying the entity's actual attributes. A
// single pass flows through four stages, one record at a time:
//
// 1. Source
//
//    A Source hands out raw dump lines one at a time. The concrete
//    implementation lives in the dump subpackage, which also knows how to
//    unwrap the gzip framing incrementally so that dumps much larger than
//    memory stream through untouched.
//
// 2. ParseLine
//
//    ParseLine splits a line into the five dump columns and decodes the
//    payload into a generic JSON tree. It doesn't interpret the payload
//    beyond that - a line either becomes a RawRecord or is classified as
//    malformed and dropped. Per-line failures never stop the pass.
//
// 3. Normalizer
//
//    The Normalizer inspects the record's type key against a fixed
//    allow-list and projects the payload onto the output schema. Authors
//    and works (and, optionally, editions) come out as Author or Book
//    values; redirects, deletes, and every other type the dump grows over
//    time fall through to a counted skip. Projection is defensive: a
//    required field that's missing skips the record, an optional field
//    with a surprising shape is simply dropped.
//
// 4. Emitter
//
//    The Emitter writes each normalized record as one JSON object per
//    line, tagged with a "kind" discriminant so authors and books can
//    share the output stream.
//
// An Extractor sequences the stages, keeps skip/emit counters, and can fan
// the parse/normalize work out over several workers since each line is
// independently decodable.
package oldump
