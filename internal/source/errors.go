package source

import (
	"fmt"
	"strings"
)

// HeaderError reports a header that cannot be mapped onto the source columns.
type HeaderError struct {
	Missing   []string
	Duplicate string
}

func (e *HeaderError) Error() string {
	if e.Duplicate != "" {
		return fmt.Sprintf("duplicate column %q in header", e.Duplicate)
	}
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// LineError reports a data row that failed validation.
type LineError struct {
	Line   int
	Column string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s %s", e.Line, e.Column, e.Reason)
}
