package osmfile

import "fmt"

// ParseError reports malformed input. It is fatal for the run.
type ParseError struct {
	Path   string
	Offset int64 // byte offset in the decompressed stream, -1 when unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("parse %s at offset %d: %v", e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
