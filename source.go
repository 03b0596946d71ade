package oldump

// Source is the interface for getting raw dump lines one at a time. Record
// returns io.EOF after the last line; any other error is a stream-level
// failure and ends the run. Implementations of Source must be safe for
// concurrent use.
type Source interface {
	Record() (string, error)
}
