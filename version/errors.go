package version

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnsupportedFormat indicates a version string matched none of the
// supported formats.
var ErrUnsupportedFormat = errors.New("unsupported version format")

// ParseError reports a version string that could not be parsed.
type ParseError struct {
	// Input is the offending version string.
	Input string
	// Formats lists the formats that were tried.
	Formats []Format
}

func (e *ParseError) Error() string {
	names := make([]string, 0, len(e.Formats))
	for _, f := range e.Formats {
		names = append(names, f.String())
	}
	return "unsupported version format " + strconv.Quote(e.Input) + " (tried " + strings.Join(names, ", ") + ")"
}

// Unwrap returns ErrUnsupportedFormat so callers can use errors.Is.
func (e *ParseError) Unwrap() error {
	return ErrUnsupportedFormat
}
