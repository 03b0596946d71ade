package oldump

// Dump type keys recognized by the Normalizer. Everything else - redirects,
// deletes, lists, pages, and whatever types the dump grows next - is skipped.
const (
	TypeAuthor  = "/type/author"
	TypeWork    = "/type/work"
	TypeEdition = "/type/edition"
)

// Output discriminant values.
const (
	KindAuthor = "author"
	KindBook   = "book"
)

// SkipReason says why a record produced no output.
type SkipReason int

const (
	// SkipNone means the record was normalized, not skipped.
	SkipNone SkipReason = iota

	// SkipUnrecognizedType means the record's type key isn't in the
	// allow-list. This is the common case in a full dump, not an anomaly.
	SkipUnrecognizedType

	// SkipMissingField means the type was recognized but a required field
	// (an author's name, a book's title) was absent or not a string.
	SkipMissingField
)

// Author is a normalized author record.
type Author struct {
	Kind           string   `json:"kind"`
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	BirthDate      string   `json:"birth_date,omitempty"`
	DeathDate      string   `json:"death_date,omitempty"`
	AlternateNames []string `json:"alternate_names,omitempty"`
}

// Book is a normalized book record. AuthorKeys are raw dump keys, in payload
// order - no lookup or cross-record resolution happens here.
type Book struct {
	Kind             string   `json:"kind"`
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorKeys       []string `json:"author_keys,omitempty"`
	FirstPublishDate string   `json:"first_publish_date,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
	Description      string   `json:"description,omitempty"`
	NumberOfPages    uint64   `json:"number_of_pages,omitempty"`
	Goodreads        []string `json:"goodreads,omitempty"`
}

// Normalizer projects RawRecords onto the output schema. The zero value
// normalizes authors and works and skips editions.
type Normalizer struct {
	// Editions folds /type/edition records into the book output. Editions
	// carry publish dates, page counts, and goodreads identifiers that
	// works don't, at the cost of many near-duplicate titles.
	Editions bool
}

// Normalize maps a RawRecord to an *Author, a *Book, or nil. When it returns
// nil, the SkipReason says why. Normalization is a pure function of one
// record; it never fails, only skips.
func (n *Normalizer) Normalize(rec RawRecord) (interface{}, SkipReason) {
	switch rec.Type {
	case TypeAuthor:
		return n.author(rec)
	case TypeWork:
		return n.book(rec, false)
	case TypeEdition:
		if !n.Editions {
			return nil, SkipUnrecognizedType
		}
		return n.book(rec, true)
	default:
		return nil, SkipUnrecognizedType
	}
}

func (n *Normalizer) author(rec RawRecord) (interface{}, SkipReason) {
	payload, ok := rec.Payload.(map[string]interface{})
	if !ok {
		return nil, SkipMissingField
	}
	name := stringField(payload, "name")
	if name == "" {
		return nil, SkipMissingField
	}
	return &Author{
		Kind:           KindAuthor,
		Key:            rec.Key,
		Name:           name,
		BirthDate:      stringField(payload, "birth_date"),
		DeathDate:      stringField(payload, "death_date"),
		AlternateNames: stringSliceField(payload, "alternate_names"),
	}, SkipNone
}

func (n *Normalizer) book(rec RawRecord, edition bool) (interface{}, SkipReason) {
	payload, ok := rec.Payload.(map[string]interface{})
	if !ok {
		return nil, SkipMissingField
	}
	title := stringField(payload, "title")
	if title == "" {
		return nil, SkipMissingField
	}
	b := &Book{
		Kind:        KindBook,
		Key:         rec.Key,
		Title:       title,
		AuthorKeys:  authorKeys(payload),
		Subjects:    stringSliceField(payload, "subjects"),
		Description: textField(payload, "description"),
	}
	if edition {
		// Editions date their own printing; works date the first
		// publication. Both land in the same output field.
		b.FirstPublishDate = stringField(payload, "publish_date")
		b.NumberOfPages = uintField(payload, "number_of_pages")
		if ids, ok := payload["identifiers"].(map[string]interface{}); ok {
			b.Goodreads = stringSliceField(ids, "goodreads")
		}
	} else {
		b.FirstPublishDate = stringField(payload, "first_publish_date")
	}
	return b, SkipNone
}

// authorKeys collects author references in payload order. The dump uses two
// conventions: editions reference authors as {"key": ...} and works wrap
// them one level deeper as {"author": {"key": ...}}. Redundant sub-entries
// sometimes repeat the same author back to back, so contiguous duplicates
// collapse; nothing else is deduplicated.
func authorKeys(payload map[string]interface{}) []string {
	entries, ok := payload["authors"].([]interface{})
	if !ok {
		return nil
	}
	var keys []string
	for _, entry := range entries {
		ref, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		key, ok := ref["key"].(string)
		if !ok {
			if inner, innerOK := ref["author"].(map[string]interface{}); innerOK {
				key, ok = inner["key"].(string)
			}
		}
		if !ok || key == "" {
			continue
		}
		if len(keys) > 0 && keys[len(keys)-1] == key {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// stringField returns payload[key] if it's a string, else "". A present
// field with an unexpected shape is dropped, not an error - the dump's
// optional fields are irregular across revisions.
func stringField(payload map[string]interface{}, key string) string {
	s, _ := payload[key].(string)
	return s
}

// stringSliceField returns the string elements of payload[key] if it's an
// array, else nil. Non-string elements are dropped; order and duplicates
// are preserved.
func stringSliceField(payload map[string]interface{}, key string) []string {
	entries, ok := payload[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, entry := range entries {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// textField handles the dump's two spellings of free text: a plain string,
// or a {"type": "/type/text", "value": ...} object.
func textField(payload map[string]interface{}, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case map[string]interface{}:
		s, _ := v["value"].(string)
		return s
	}
	return ""
}

func uintField(payload map[string]interface{}, key string) uint64 {
	f, ok := payload[key].(float64)
	if !ok || f < 0 || f != float64(uint64(f)) {
		return 0
	}
	return uint64(f)
}
